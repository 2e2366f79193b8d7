package scrub

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Step names usable in a pipeline.
const (
	StepFormulaPassthrough  = "formula_passthrough"
	StepFoldAccents         = "fold_accents"
	StepSubstitute          = "substitute"
	StepRelocateLeading     = "relocate_leading"
	StepFillerPrefix        = "filler_prefix"
	StepCollapseUnderscores = "collapse_underscores"
	StepTrimUnderscores     = "trim_underscores"
	StepTruncate            = "truncate"
)

// Step is one transformation of the pipeline.
// Apply returns the new string and whether the pipeline should stop.
type Step struct {
	Name        string
	Description string
	Apply       func(s string) (string, bool)
}

type stepFactory struct {
	description string
	build       func(opts Options) func(string) (string, bool)
}

var stepFactories = map[string]stepFactory{
	StepFormulaPassthrough: {
		description: "leave values starting with '=' untouched and stop",
		build: func(Options) func(string) (string, bool) {
			return func(s string) (string, bool) {
				return s, strings.HasPrefix(s, "=")
			}
		},
	},
	StepFoldAccents: {
		description: "strip diacritics so accented letters survive substitution",
		build:       func(Options) func(string) (string, bool) { return cont(FoldAccents) },
	},
	StepSubstitute: {
		description: "replace characters outside [A-Za-z0-9_] with '_'",
		build:       func(Options) func(string) (string, bool) { return cont(Substitute) },
	},
	StepRelocateLeading: {
		description: "move a leading run of digits and underscores to the end",
		build:       func(Options) func(string) (string, bool) { return cont(RelocateLeading) },
	},
	StepFillerPrefix: {
		description: "prepend the filler letter when the value starts with a digit or '_'",
		build: func(opts Options) func(string) (string, bool) {
			return cont(func(s string) string { return FillerPrefix(s, opts.Filler) })
		},
	},
	StepCollapseUnderscores: {
		description: "replace runs of '_' with a single '_'",
		build:       func(Options) func(string) (string, bool) { return cont(CollapseUnderscores) },
	},
	StepTrimUnderscores: {
		description: "trim leading and trailing '_'",
		build:       func(Options) func(string) (string, bool) { return cont(TrimUnderscores) },
	},
	StepTruncate: {
		description: "bound the length, keeping the tail after a '_'",
		build: func(opts Options) func(string) (string, bool) {
			return cont(func(s string) string { return Truncate(s, opts.MaxLength, opts.TailLength) })
		},
	},
}

// NewStep builds the named step with the given options.
func NewStep(name string, opts Options) (Step, error) {
	f, ok := stepFactories[name]
	if !ok {
		return Step{}, fmt.Errorf("unknown scrub step: %s", name)
	}
	return Step{Name: name, Description: f.description, Apply: f.build(opts)}, nil
}

// StepNames returns the names of all known steps, sorted.
func StepNames() []string {
	names := make([]string, 0, len(stepFactories))
	for name := range stepFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StepDescription returns the one-line description of a known step.
func StepDescription(name string) (string, bool) {
	f, ok := stepFactories[name]
	return f.description, ok
}

func cont(fn func(string) string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		return fn(s), false
	}
}

// Substitute replaces every rune outside [A-Za-z0-9_] with '_'.
func Substitute(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// RelocateLeading moves a leading run of digits and underscores to the end of s,
// separated by '_'. A string made only of such characters is left alone.
func RelocateLeading(s string) string {
	n := 0
	for n < len(s) && isDigitOrUnderscore(s[n]) {
		n++
	}
	if n == 0 || n == len(s) {
		return s
	}
	return s[n:] + "_" + s[:n]
}

// FillerPrefix prepends filler when s starts with a digit or underscore.
func FillerPrefix(s string, filler rune) string {
	if s == "" || !isDigitOrUnderscore(s[0]) {
		return s
	}
	return string(filler) + s
}

// CollapseUnderscores replaces every run of two or more '_' with one.
func CollapseUnderscores(s string) string {
	if !strings.Contains(s, "__") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// TrimUnderscores removes leading and trailing '_'.
func TrimUnderscores(s string) string {
	return strings.Trim(s, "_")
}

// Truncate keeps s within maxLen by joining a head segment and the last
// tailLen characters with '_'.
func Truncate(s string, maxLen, tailLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	head := maxLen - tailLen - 1
	return string(r[:head]) + "_" + string(r[len(r)-tailLen:])
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents strips combining marks, e.g. "Année" becomes "Annee".
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

func isIdentRune(r rune) bool {
	return isASCIILetter(r) || (r >= '0' && r <= '9') || r == '_'
}

func isDigitOrUnderscore(c byte) bool {
	return (c >= '0' && c <= '9') || c == '_'
}
