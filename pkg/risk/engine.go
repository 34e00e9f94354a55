// Package risk turns an analysis into a deterministic 0-100 risk score and
// a label.
//
// The score comes from the analyzer when it supplied one, otherwise from a
// baseline formula over pros, cons and red flags. Override rules then look
// for terms that make a contract unsignable regardless of the rest, and can
// only lower the score.
package risk

import (
	"math"
	"regexp"
	"strings"

	"verdict-hq/verdict/pkg/analysis"
)

// Baseline parameters.
const (
	BaseScore     = 70
	PointWeight   = 4
	WeightHigh    = 25
	WeightMedium  = 15
	WeightLow     = 8
	WeightUnknown = 12
)

// Rule is a named override. When Match reports true the score is capped
// at Cap.
type Rule struct {
	Name  string
	Cap   int
	Match func(haystack string, r *analysis.Result) bool
}

var (
	hundredPercent  = regexp.MustCompile(`100\s*%`)
	takerParty      = regexp.MustCompile(`(manager|management|label|company)`)
	incomeTerm      = regexp.MustCompile(`(income|earnings|revenue|revenues|proceeds|gross|net)`)
	perpetualRights = regexp.MustCompile(`(assigns?|transfers?).{0,40}(all|entire).{0,15}(rights|masters|copyright|ownership).{0,40}(perpetuity|in\s+perpetuity|irrevocable)`)
)

// HundredPercentIncome caps the score at 10 when the text hands 100% of
// income to the other party.
var HundredPercentIncome = Rule{
	Name: "hundred_percent_income",
	Cap:  10,
	Match: func(h string, _ *analysis.Result) bool {
		return hundredPercent.MatchString(h) && takerParty.MatchString(h) && incomeTerm.MatchString(h)
	},
}

// PerpetualAllRights caps the score at 20 when all rights are assigned
// forever.
var PerpetualAllRights = Rule{
	Name: "perpetual_all_rights",
	Cap:  20,
	Match: func(h string, _ *analysis.Result) bool {
		return perpetualRights.MatchString(h)
	},
}

// ManyHighFlags caps the score at 30 when three or more red flags are high
// severity.
var ManyHighFlags = Rule{
	Name: "many_high_flags",
	Cap:  30,
	Match: func(_ string, r *analysis.Result) bool {
		high := 0
		for _, f := range r.RedFlags {
			if strings.EqualFold(f.Severity, analysis.SeverityHigh) {
				high++
			}
		}
		return high >= 3
	},
}

// DefaultRules are the override rules applied by New.
var DefaultRules = []Rule{HundredPercentIncome, PerpetualAllRights, ManyHighFlags}

// Engine scores analyses.
type Engine struct {
	rules []Rule
}

// New creates an engine with the given rules, or DefaultRules when none
// are passed.
func New(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Engine{rules: rules}
}

// Finalize sets RiskScore and RiskLabel on a copy of r and returns it
// together with the names of the rules that fired. The label always
// describes the final score.
func (e *Engine) Finalize(r *analysis.Result) (*analysis.Result, []string) {
	out := *r
	out.Normalize()

	score := 0
	if r.RiskScore != nil {
		score = Clamp(float64(*r.RiskScore))
	} else {
		score = Baseline(&out)
	}

	haystack := Haystack(&out)
	var fired []string
	for _, rule := range e.rules {
		if rule.Match(haystack, &out) {
			fired = append(fired, rule.Name)
			if score > rule.Cap {
				score = rule.Cap
			}
		}
	}

	score = Clamp(float64(score))
	out.RiskScore = analysis.IntPtr(score)
	out.RiskLabel = Label(score)
	return &out, fired
}

// Baseline computes the score when the analyzer gave none:
// 70 + 4·pros − 4·cons − the severity weight of each red flag.
func Baseline(r *analysis.Result) int {
	score := float64(BaseScore)
	score += float64(len(r.Pros) * PointWeight)
	score -= float64(len(r.Cons) * PointWeight)
	for _, f := range r.RedFlags {
		score -= float64(SeverityWeight(f.Severity))
	}
	return Clamp(score)
}

// SeverityWeight returns the baseline deduction for a red flag severity.
func SeverityWeight(severity string) int {
	switch strings.ToLower(severity) {
	case analysis.SeverityHigh:
		return WeightHigh
	case analysis.SeverityMedium:
		return WeightMedium
	case analysis.SeverityLow:
		return WeightLow
	default:
		return WeightUnknown
	}
}

// Clamp rounds n and limits it to [0, 100]. Non-finite values become 0.
func Clamp(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	v := math.Round(n)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// Label maps a score to its label.
func Label(score int) string {
	switch {
	case score >= 85:
		return "Safe to sign (low risk)"
	case score >= 70:
		return "Mostly OK (minor fixes)"
	case score >= 55:
		return "Caution (needs changes)"
	case score >= 40:
		return "Risky (major changes)"
	default:
		return "Do not sign as-is"
	}
}

// Haystack flattens the text of r into one lowercase string for the
// override rules.
func Haystack(r *analysis.Result) string {
	parts := []string{r.Summary}
	for _, p := range r.Pros {
		parts = append(parts, p.Title, p.WhyItMatters)
	}
	for _, c := range r.Cons {
		parts = append(parts, c.Title, c.WhyItMatters)
	}
	for _, f := range r.RedFlags {
		parts = append(parts, f.Clause, f.Explanation, f.SuggestedLanguage, f.SourceExcerpt)
	}
	for _, k := range r.KeyClauses {
		parts = append(parts, k.Name, k.Excerpt)
	}
	parts = append(parts, r.QuestionsForCounterparty...)
	parts = append(parts, r.NegotiationLevers...)
	return strings.ToLower(strings.Join(parts, " \n "))
}
