package scrub

import "testing"

func TestStepFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"substitute punctuation", Substitute, "a-b c", "a_b_c"},
		{"substitute multibyte", Substitute, "né", "n_"},
		{"relocate digits", RelocateLeading, "12ab", "ab_12"},
		{"relocate mixed run", RelocateLeading, "_1_ab", "ab__1_"},
		{"relocate nothing", RelocateLeading, "ab12", "ab12"},
		{"relocate all digits", RelocateLeading, "123", "123"},
		{"filler digit", func(s string) string { return FillerPrefix(s, 'N') }, "1", "N1"},
		{"filler underscore", func(s string) string { return FillerPrefix(s, 'N') }, "_a", "N_a"},
		{"filler letter", func(s string) string { return FillerPrefix(s, 'N') }, "a1", "a1"},
		{"filler empty", func(s string) string { return FillerPrefix(s, 'N') }, "", ""},
		{"collapse runs", CollapseUnderscores, "a___b__c_d", "a_b_c_d"},
		{"collapse none", CollapseUnderscores, "a_b", "a_b"},
		{"trim both ends", TrimUnderscores, "__a_b__", "a_b"},
		{"truncate short", func(s string) string { return Truncate(s, 8, 3) }, "abcdefgh", "abcdefgh"},
		{"truncate long", func(s string) string { return Truncate(s, 8, 3) }, "abcdefghij", "abcd_hij"},
		{"fold accents", FoldAccents, "Année Überfluss", "Annee Uberfluss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormulaPassthroughStops(t *testing.T) {
	step, err := NewStep(StepFormulaPassthrough, DefaultOptions())
	if err != nil {
		t.Fatalf("NewStep: %v", err)
	}

	out, stop := step.Apply("=SUM(A1:A3)")
	if !stop || out != "=SUM(A1:A3)" {
		t.Errorf("Apply(formula) = (%q, %v), want pass-through and stop", out, stop)
	}
	if _, stop := step.Apply("A=1"); stop {
		t.Error("Apply(A=1) stopped the pipeline")
	}
}

func TestFoldAccentsPipeline(t *testing.T) {
	steps := append([]string{StepFormulaPassthrough, StepFoldAccents}, DefaultSteps[1:]...)
	s, err := New(DefaultOptions(), steps...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := s.Scrub("Café"); got != "Cafe" {
		t.Errorf("Scrub(Café) = %q, want Cafe", got)
	}
}

func TestStepNames(t *testing.T) {
	names := StepNames()
	if len(names) != 8 {
		t.Fatalf("StepNames() = %v, want 8 steps", names)
	}
	for _, name := range names {
		if desc, ok := StepDescription(name); !ok || desc == "" {
			t.Errorf("step %q has no description", name)
		}
	}
}
