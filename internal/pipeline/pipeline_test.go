package pipeline

import (
	"strings"
	"testing"
	"unicode"

	"concierge-llm/internal/outcome"
)

func TestValidatePasses(t *testing.T) {
	stage := Validate[string, string](func(s string) bool { return s != "" }, "empty input")
	out := stage("Paris")
	if out.IsError() || out.Value() != "Paris" {
		t.Fatalf("expected pass-through, got %v / %q", out.Err(), out.Value())
	}
}

func TestValidateFails(t *testing.T) {
	stage := Validate[string, string](func(s string) bool { return s != "" }, "empty input")
	out := stage("")
	if out.IsSuccess() || out.Err() != "empty input" {
		t.Fatalf("expected empty input error, got %v", out.Err())
	}
}

func TestChainShortCircuitsAfterFirstFailure(t *testing.T) {
	var calls [3]int
	counting := func(idx int, pass bool, msg string) Stage[string, string] {
		return func(s string) outcome.Outcome[string, string] {
			calls[idx]++
			if pass {
				return outcome.Success[string, string](s)
			}
			return outcome.Failure[string, string](msg)
		}
	}

	chained := Chain(
		counting(0, true, ""),
		counting(1, false, "second stage failed"),
		counting(2, true, ""),
	)

	out := chained("anything")
	if out.IsSuccess() || out.Err() != "second stage failed" {
		t.Fatalf("expected second stage failure, got %v", out.Err())
	}
	if calls != [3]int{1, 1, 0} {
		t.Fatalf("expected stages after the failure to be skipped, calls=%v", calls)
	}
}

func TestChainRunsAllStagesOnSuccess(t *testing.T) {
	upper := func(s string) outcome.Outcome[string, string] {
		return outcome.Success[string, string](strings.ToUpper(s))
	}
	trim := func(s string) outcome.Outcome[string, string] {
		return outcome.Success[string, string](strings.TrimSpace(s))
	}
	out := Chain(trim, upper)("  hola  ")
	if out.IsError() || out.Value() != "HOLA" {
		t.Fatalf("expected HOLA, got %q", out.Value())
	}
}

func TestChainEntityValidators(t *testing.T) {
	nonEmpty := Validate[string, string](func(s string) bool {
		return strings.TrimSpace(s) != "" && len(s) < 100
	}, "entity must be non-empty and under 100 characters")
	format := Validate[string, string](func(s string) bool {
		for _, r := range s {
			if !unicode.IsLetter(r) && r != ' ' && r != '-' {
				return false
			}
		}
		return true
	}, "entity may only contain letters, spaces and hyphens")
	validate := Chain(nonEmpty, format)

	cases := []struct {
		input   string
		wantErr string
	}{
		{"Paris", ""},
		{"New York", ""},
		{"Saint-Denis", ""},
		{"", "entity must be non-empty and under 100 characters"},
		{strings.Repeat("a", 120), "entity must be non-empty and under 100 characters"},
		{"Paris;DROP", "entity may only contain letters, spaces and hyphens"},
		{"city123", "entity may only contain letters, spaces and hyphens"},
	}
	for _, tc := range cases {
		out := validate(tc.input)
		if tc.wantErr == "" {
			if out.IsError() {
				t.Fatalf("input %q: unexpected error %v", tc.input, out.Err())
			}
			continue
		}
		if out.IsSuccess() || out.Err() != tc.wantErr {
			t.Fatalf("input %q: expected %q, got %v", tc.input, tc.wantErr, out.Err())
		}
	}
}
