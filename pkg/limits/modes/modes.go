// Package modes selects the operating mode from budget consumption and
// describes the limits each mode enforces.
package modes

import (
	"fmt"
	"time"
)

// Mode is an operating mode. Stricter modes shrink every limit.
type Mode string

const (
	// Normal is the default mode.
	Normal Mode = "normal"

	// Light is entered once half the monthly budget is spent.
	Light Mode = "light"

	// Critical is entered once three quarters of the budget is spent.
	Critical Mode = "critical"
)

// Parse converts a string to a Mode.
func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case Normal, Light, Critical:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Policy is the set of limits bound to a mode. Policies are values and
// never change after a request picks one up.
type Policy struct {
	Mode Mode

	// MaxPages is the number of PDF pages extracted before truncation.
	MaxPages int

	// MaxBytes is the largest document accepted.
	MaxBytes int64

	// ChunkSize and ChunkOverlap size the analysis windows, in characters.
	ChunkSize    int
	ChunkOverlap int

	// CallDelay is the pause before each analyzer call after the first.
	CallDelay time.Duration

	// MaxOutputTokens bounds each chunk call's output.
	MaxOutputTokens int

	// DailyCap is the number of analyses a user may start per UTC day.
	DailyCap int

	// MaxConcurrentPerUser is the number of analyses a user may run at once.
	MaxConcurrentPerUser int

	// Model is the analyzer model requested in this mode.
	Model string
}

const mib = 1024 * 1024

// PolicyFor returns the policy of mode m. defaultModel is used by Normal.
// Unknown modes get the Normal policy.
func PolicyFor(m Mode, defaultModel string) Policy {
	switch m {
	case Critical:
		return Policy{
			Mode:                 Critical,
			MaxPages:             10,
			MaxBytes:             2 * mib,
			ChunkSize:            3000,
			ChunkOverlap:         300,
			CallDelay:            2000 * time.Millisecond,
			MaxOutputTokens:      400,
			DailyCap:             10,
			MaxConcurrentPerUser: 1,
			Model:                "gemini-1.5-flash-lite",
		}
	case Light:
		return Policy{
			Mode:                 Light,
			MaxPages:             25,
			MaxBytes:             5 * mib,
			ChunkSize:            4000,
			ChunkOverlap:         400,
			CallDelay:            1200 * time.Millisecond,
			MaxOutputTokens:      700,
			DailyCap:             25,
			MaxConcurrentPerUser: 1,
			Model:                "gemini-1.5-flash",
		}
	default:
		return Policy{
			Mode:                 Normal,
			MaxPages:             50,
			MaxBytes:             10 * mib,
			ChunkSize:            5000,
			ChunkOverlap:         500,
			CallDelay:            700 * time.Millisecond,
			MaxOutputTokens:      1200,
			DailyCap:             50,
			MaxConcurrentPerUser: 2,
			Model:                defaultModel,
		}
	}
}
