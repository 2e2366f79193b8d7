// Package scrub normalizes column headers and sheet titles into restricted identifiers.
//
// A Scrubber is an ordered pipeline of independent steps. The default pipeline
// produces identifiers matching [A-Za-z][A-Za-z0-9_]* whose length never exceeds
// the configured maximum. Order matters: later steps repair conditions that
// earlier steps can re-expose (e.g. truncation can leave a doubled separator).
//
// Scrubbing looks at one string at a time. Two distinct raw headers may scrub
// to the same identifier; the pipeline does not deduplicate siblings.
package scrub

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxLength is the longest identifier the default pipeline emits.
	DefaultMaxLength = 16

	// DefaultTailLength is how many trailing characters truncation keeps.
	DefaultTailLength = 4

	// DefaultFiller is prepended when an identifier would start with a digit or underscore.
	DefaultFiller = 'N'
)

// DefaultSteps is the step order applied by New when no steps are given.
var DefaultSteps = []string{
	StepFormulaPassthrough,
	StepSubstitute,
	StepRelocateLeading,
	StepFillerPrefix,
	StepCollapseUnderscores,
	StepTrimUnderscores,
	StepTruncate,
	StepCollapseUnderscores,
}

// Options configures the parameterized steps.
type Options struct {
	// MaxLength bounds the identifier length (truncate step)
	MaxLength int

	// TailLength is the suffix kept by the truncate step
	TailLength int

	// Filler is the letter prepended by the filler_prefix step
	Filler rune
}

// DefaultOptions returns the options of the default naming convention.
func DefaultOptions() Options {
	return Options{
		MaxLength:  DefaultMaxLength,
		TailLength: DefaultTailLength,
		Filler:     DefaultFiller,
	}
}

// Validate checks that the options describe a satisfiable convention.
func (o Options) Validate() error {
	if o.TailLength < 1 {
		return fmt.Errorf("tail length must be at least 1, got %d", o.TailLength)
	}
	// head + "_" + tail, with a head of at least one letter
	if o.MaxLength < o.TailLength+2 {
		return fmt.Errorf("max length %d too small for tail length %d", o.MaxLength, o.TailLength)
	}
	if !isASCIILetter(o.Filler) {
		return fmt.Errorf("filler must be an ASCII letter, got %q", o.Filler)
	}
	return nil
}

// Scrubber applies an ordered list of steps to raw identifiers.
type Scrubber struct {
	steps   []Step
	options Options
}

// New builds a Scrubber from step names. An empty list selects DefaultSteps.
func New(opts Options, names ...string) (*Scrubber, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = DefaultSteps
	}

	steps := make([]Step, 0, len(names))
	for _, name := range names {
		step, err := NewStep(name, opts)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	return &Scrubber{steps: steps, options: opts}, nil
}

// Default returns the Scrubber for the default naming convention.
func Default() *Scrubber {
	s, err := New(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return s
}

// Options returns the options the Scrubber was built with.
func (s *Scrubber) Options() Options {
	return s.options
}

// Steps returns the step names in application order.
func (s *Scrubber) Steps() []string {
	names := make([]string, len(s.steps))
	for i, step := range s.steps {
		names[i] = step.Name
	}
	return names
}

// Scrub maps a raw identifier to its normalized form.
// The empty string stands for an absent value and is returned unchanged.
func (s *Scrubber) Scrub(raw string) string {
	if raw == "" {
		return raw
	}

	out := raw
	for _, step := range s.steps {
		var stop bool
		out, stop = step.Apply(out)
		if stop {
			break
		}
	}
	return out
}

// ScrubHeader scrubs every entry of a header row, preserving order and length.
func (s *Scrubber) ScrubHeader(header []string) []string {
	scrubbed := make([]string, len(header))
	for i, entry := range header {
		scrubbed[i] = s.Scrub(entry)
	}
	return scrubbed
}

// Scrub normalizes raw with the default naming convention.
func Scrub(raw string) string {
	return defaultScrubber.Scrub(raw)
}

// ScrubHeader normalizes a header row with the default naming convention.
func ScrubHeader(header []string) []string {
	return defaultScrubber.ScrubHeader(header)
}

var defaultScrubber = Default()

// Changed reports whether two header rows differ.
func Changed(before, after []string) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}

// Stem splits a file name into the part before its last '.' and the extension (without dot).
func Stem(filename string) (stem, ext string) {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return filename, ""
	}
	return filename[:i], filename[i+1:]
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
