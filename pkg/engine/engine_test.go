package engine

import (
	"strings"
	"testing"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	mgr, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if mgr == nil {
		t.Fatal("expected non-nil manager")
	}
	if mgr.Len() != 0 {
		t.Errorf("expected empty sketch, got %d entities", mgr.Len())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	mgr, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if mgr == nil || mgr.Len() != 0 {
		t.Fatal("expected empty sketch")
	}
}

func TestEvaluatePlainExpression(t *testing.T) {
	eng := NewEngine()

	mgr, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if mgr.Len() != 0 {
		t.Errorf("expected empty sketch from arithmetic, got %d entities", mgr.Len())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	mgr, evalErrs, err := eng.Evaluate("(point 1 2")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if mgr != nil {
		t.Error("expected nil manager on parse failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced parens")
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := NewEngine()

	mgr, evalErrs, err := eng.Evaluate(`(constrain "horizontal" "L999")`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if mgr != nil {
		t.Error("expected nil manager on runtime failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unknown entity id")
	}
	joined := ""
	for _, e := range evalErrs {
		joined += e.Error() + "\n"
	}
	if !strings.Contains(joined, "L999") {
		t.Errorf("expected error to name the unknown id, got: %s", joined)
	}
}

func TestEvaluateFreshStatePerCall(t *testing.T) {
	eng := NewEngine()

	mgr1, _, err := eng.Evaluate("(point 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	mgr2, _, err := eng.Evaluate("(point 3 4)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if mgr1 == mgr2 {
		t.Fatal("expected a fresh manager per evaluation")
	}
	if mgr1.Len() != 1 || mgr2.Len() != 1 {
		t.Errorf("expected one entity per sketch, got %d and %d", mgr1.Len(), mgr2.Len())
	}
}

func TestEvaluateAppliesSolverConfig(t *testing.T) {
	eng := NewEngine()
	eng.Tolerance = 1e-3

	mgr, evalErrs, err := eng.Evaluate("(point 0 0)")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("unexpected errors: %v %v", evalErrs, err)
	}
	if mgr.Solver().Tolerance() != 1e-3 {
		t.Errorf("expected solver tolerance 1e-3, got %g", mgr.Solver().Tolerance())
	}
}

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	got := preprocessSource("(constrain :horizontal l1)")
	want := `(constrain "__kw_horizontal" l1)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPreprocessPreservesAssignment(t *testing.T) {
	got := preprocessSource("(l1 := (line 0 0 1 0))")
	if !strings.Contains(got, ":=") {
		t.Errorf("expected := preserved, got %q", got)
	}
}

func TestPreprocessSkipsStrings(t *testing.T) {
	got := preprocessSource(`(print "a :keyword inside")`)
	if strings.Contains(got, kwPrefix) {
		t.Errorf("expected string contents untouched, got %q", got)
	}
}

func TestPreprocessComments(t *testing.T) {
	got := preprocessSource("(point 1 2) ;; trailing note")
	if !strings.Contains(got, "// trailing note") {
		t.Errorf("expected ; comment converted, got %q", got)
	}
	if strings.Contains(got, ";") {
		t.Errorf("expected no semicolons left, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Error message parsing
// ---------------------------------------------------------------------------

func TestParseZygomysErrorWithLine(t *testing.T) {
	errs := parseZygomysError(stubError("Error on line 3: undefined symbol `foo`"))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Line != 3 {
		t.Errorf("expected line 3, got %d", errs[0].Line)
	}
	if !strings.Contains(errs[0].Message, "undefined symbol") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestParseZygomysErrorWithoutLine(t *testing.T) {
	errs := parseZygomysError(stubError("something broke"))
	if len(errs) != 1 || errs[0].Line != 0 {
		t.Fatalf("expected one line-less error, got %v", errs)
	}
}

type stubError string

func (s stubError) Error() string { return string(s) }
