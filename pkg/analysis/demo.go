package analysis

// Demo returns the fixed analysis served in demo mode. Each call returns a
// fresh copy the caller may modify.
func Demo() *Result {
	return &Result{
		Summary: "Demo only. This is not legal advice.",
		Pros: []Point{
			{Title: "✅ Clear scope", WhyItMatters: "You know what is covered."},
		},
		Cons: []Point{
			{Title: "⚠️ One-sided term", WhyItMatters: "Gives them too much control."},
		},
		RedFlags: []RedFlag{
			{
				Clause:            "Manager gets 100% of artist income",
				Severity:          SeverityHigh,
				Explanation:       "You keep no earnings. This is unfair.",
				SuggestedLanguage: "Set commission to 15–20%, not 100%.",
				SourceExcerpt:     "Manager shall receive 100% of Artist’s income from all sources.",
			},
			{
				Clause:            "All rights in perpetuity",
				Severity:          SeverityHigh,
				Explanation:       "Rights never return. You lose control.",
				SuggestedLanguage: "Add a 5–7 year reversion of rights.",
				SourceExcerpt:     "Artist hereby assigns all rights in perpetuity.",
			},
		},
		KeyClauses: []KeyClause{
			{Name: "Commission", Found: true, Excerpt: "100% to Manager"},
			{Name: "Term", Found: true, Excerpt: "Initial period 4 years"},
		},
		QuestionsForCounterparty: []string{"Can we set commission to 15–20% instead of 100%?"},
		NegotiationLevers:        []string{"Set commission at 15–20%.", "Add reversion after 5–7 years."},
	}
}
