package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const validDoc = `{
  "summary": "Short deal.",
  "pros": [{"title": "Fair split", "why_it_matters": "You keep most income."}],
  "cons": [],
  "red_flags": [{"clause": "Long term", "severity": "medium", "explanation": "Hard to leave.", "suggested_language": "Cap at 3 years."}],
  "key_clauses": [{"name": "Term", "found": true, "excerpt": "five years"}],
  "questions_for_counterparty": ["Can the term be 3 years?"],
  "negotiation_levers": ["Ask for a 3-year term."],
  "risk_score": 61
}`

// ============================================================================
// Schema
// ============================================================================

func TestSchema_IsValidJSON(t *testing.T) {
	var v map[string]any
	if err := json.Unmarshal(Schema(), &v); err != nil {
		t.Fatalf("Schema() is not valid JSON: %v", err)
	}
	if v["type"] != "object" {
		t.Errorf("Expected object schema, got %v", v["type"])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"valid", validDoc, true},
		{"missing fields", `{"summary":"x"}`, true},
		{"unknown severity", strings.Replace(validDoc, `"medium"`, `"severe"`, 1), true},
		{"score out of range", strings.Replace(validDoc, `61`, `140`, 1), true},
		{"fractional score", strings.Replace(validDoc, `61`, `61.5`, 1), true},
		{"not an object", `["summary"]`, false},
		{"pros not an array", strings.Replace(validDoc, `"cons": []`, `"cons": "none"`, 1), false},
		{"score not a number", strings.Replace(validDoc, `61`, `"high"`, 1), false},
		{"found not a bool", strings.Replace(validDoc, `"found": true`, `"found": "yes"`, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid {
				var se *SchemaError
				if !errors.As(err, &se) {
					t.Errorf("Expected SchemaError, got %v", err)
				}
			}
		})
	}
}

// ============================================================================
// Extract / Decode
// ============================================================================

func TestExtract_StripsFence(t *testing.T) {
	raw := "Here you go:\n```json\n" + validDoc + "\n```\nThanks"
	payload, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	r, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Summary != "Short deal." || r.RiskScore == nil || *r.RiskScore != 61 {
		t.Errorf("Unexpected result: %+v", r)
	}
}

func TestDecode_RepairsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"61", 61},
		{"140", 100},
		{"-5", 0},
		{"61.5", 62},
		{"61.4", 61},
		{"1e9", 100},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			payload, err := Extract(strings.Replace(validDoc, `61`, tt.raw, 1))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			r, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if r.RiskScore == nil || *r.RiskScore != tt.want {
				t.Errorf("Expected score %d, got %v", tt.want, r.RiskScore)
			}
		})
	}
}

func TestDecode_KeepsOtherFields(t *testing.T) {
	r, err := Decode([]byte(validDoc))
	if err != nil {
		t.Fatal(err)
	}
	if r.Summary != "Short deal." || len(r.RedFlags) != 1 || r.RedFlags[0].Severity != SeverityMedium {
		t.Errorf("Unexpected result: %+v", r)
	}
	if len(r.NegotiationLevers) != 1 {
		t.Errorf("Expected 1 lever, got %d", len(r.NegotiationLevers))
	}
}

func TestExtract_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", `{"summary": 3}`} {
		if _, err := Extract(raw); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

func TestDecode_NormalizesNilSlices(t *testing.T) {
	r, err := Decode([]byte(`{"summary":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	out, _ := json.Marshal(r)
	if !strings.Contains(string(out), `"pros":[]`) || !strings.Contains(string(out), `"negotiation_levers":[]`) {
		t.Errorf("Expected empty arrays, got %s", out)
	}
	if strings.Contains(string(out), "risk_score") {
		t.Errorf("Absent score should be omitted, got %s", out)
	}
}

// ============================================================================
// Prompts
// ============================================================================

func TestChunkPrompt_EmbedsExcerpt(t *testing.T) {
	p := ChunkPrompt("The Artist grants 20% commission.")
	if !strings.Contains(p, `"""The Artist grants 20% commission."""`) {
		t.Errorf("Excerpt not embedded: %s", p)
	}
}

func TestMergePrompt_PreservesOrder(t *testing.T) {
	a := &Result{Summary: "first"}
	b := &Result{Summary: "second"}

	p, err := MergePrompt([]*Result{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(p, "first") > strings.Index(p, "second") {
		t.Error("Partials should appear in plan order")
	}
}

func TestDemo_IsFreshCopy(t *testing.T) {
	d := Demo()
	d.Summary = "changed"
	if Demo().Summary != "Demo only. This is not legal advice." {
		t.Error("Demo() should return a fresh value")
	}
	if len(Demo().RedFlags) != 2 {
		t.Error("Expected two demo red flags")
	}
}
