// Package analysis defines the structured contract analysis, the schema the
// analyzer must follow, and the prompts that request it.
package analysis

import (
	"encoding/json"
	"math"
)

// Severity values of a red flag.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Point is a pro or a con.
type Point struct {
	Title        string `json:"title"`
	WhyItMatters string `json:"why_it_matters"`
}

// RedFlag is a term the reader should push back on.
type RedFlag struct {
	Clause            string `json:"clause"`
	Severity          string `json:"severity"`
	Explanation       string `json:"explanation"`
	SuggestedLanguage string `json:"suggested_language"`
	SourceExcerpt     string `json:"source_excerpt,omitempty"`
}

// KeyClause records whether a standard clause was found and what it says.
type KeyClause struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Excerpt string `json:"excerpt"`
}

// Result is a complete analysis of one document, or of one chunk of it.
//
// RiskScore is nil until the analyzer or the risk engine sets it. Once set
// it is in [0, 100] and RiskLabel is non-empty.
type Result struct {
	Summary                  string      `json:"summary"`
	Pros                     []Point     `json:"pros"`
	Cons                     []Point     `json:"cons"`
	RedFlags                 []RedFlag   `json:"red_flags"`
	KeyClauses               []KeyClause `json:"key_clauses"`
	QuestionsForCounterparty []string    `json:"questions_for_counterparty"`
	NegotiationLevers        []string    `json:"negotiation_levers"`
	RiskScore                *int        `json:"risk_score,omitempty"`
	RiskLabel                string      `json:"risk_label,omitempty"`
}

// Normalize replaces nil slices with empty ones so the result always
// encodes as arrays.
func (r *Result) Normalize() {
	if r.Pros == nil {
		r.Pros = []Point{}
	}
	if r.Cons == nil {
		r.Cons = []Point{}
	}
	if r.RedFlags == nil {
		r.RedFlags = []RedFlag{}
	}
	if r.KeyClauses == nil {
		r.KeyClauses = []KeyClause{}
	}
	if r.QuestionsForCounterparty == nil {
		r.QuestionsForCounterparty = []string{}
	}
	if r.NegotiationLevers == nil {
		r.NegotiationLevers = []string{}
	}
}

// UnmarshalJSON accepts any JSON number for risk_score. The value is
// rounded half away from zero and clamped to [0, 100].
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	aux := struct {
		*plain
		RiskScore *float64 `json:"risk_score,omitempty"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.RiskScore = nil
	if aux.RiskScore != nil {
		score := int(math.Round(math.Max(0, math.Min(100, *aux.RiskScore))))
		r.RiskScore = &score
	}
	return nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
