package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseAnalyzeRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    AnalyzeRequest
		wantErr bool
	}{
		{"url only", `{"fileUrl":"https://files.example.com/a.pdf?sig=1"}`, AnalyzeRequest{FileURL: "https://files.example.com/a.pdf?sig=1"}, false},
		{"demo", `{"demo":true}`, AnalyzeRequest{Demo: true}, false},
		{"trims url", `{"fileUrl":"  https://x/a.pdf \n"}`, AnalyzeRequest{FileURL: "https://x/a.pdf"}, false},
		{"empty body", ``, AnalyzeRequest{}, false},
		{"unknown fields ignored", `{"fileUrl":"https://x/a","extra":1}`, AnalyzeRequest{FileURL: "https://x/a"}, false},
		{"invalid json", `{"fileUrl":`, AnalyzeRequest{}, true},
		{"wrong type", `{"fileUrl":42}`, AnalyzeRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(tt.body))
			got, err := ParseAnalyzeRequest(r, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnalyzeRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Errorf("Expected RequestError, got %T", err)
				}
				return
			}
			if *got != tt.want {
				t.Errorf("ParseAnalyzeRequest() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseAnalyzeRequest_BodyLimit(t *testing.T) {
	body := `{"fileUrl":"https://files.example.com/` + strings.Repeat("a", 100) + `"}`

	r := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	if _, err := ParseAnalyzeRequest(r, 32); err == nil {
		t.Error("Expected error for oversized body")
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	if _, err := ParseAnalyzeRequest(r, int64(len(body))); err != nil {
		t.Errorf("Expected body at the limit to be accepted, got %v", err)
	}
}
