// Package profile defines naming-convention profiles for the identifier scrubber.
package profile

import (
	"fmt"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/scrubber/scrub"
)

// DefaultName is the profile used when none is selected.
const DefaultName = "gis"

// Profile describes a naming convention and the scrub pipeline that enforces it.
type Profile struct {
	// Name is the profile identifier (e.g., "gis", "shapefile")
	Name string `yaml:"name" json:"name"`

	// Description provides human-readable documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// MaxLength is the longest identifier allowed
	MaxLength int `yaml:"max_length" json:"max_length"`

	// TailLength is how many trailing characters survive truncation
	TailLength int `yaml:"tail_length" json:"tail_length"`

	// Filler is the letter prepended to identifiers that would start with a digit
	Filler string `yaml:"filler" json:"filler"`

	// Steps is the ordered list of scrub step names
	Steps []string `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Options converts the profile parameters to scrub options.
func (p *Profile) Options() scrub.Options {
	opts := scrub.DefaultOptions()
	if p.MaxLength > 0 {
		opts.MaxLength = p.MaxLength
	}
	if p.TailLength > 0 {
		opts.TailLength = p.TailLength
	}
	if p.Filler != "" {
		opts.Filler, _ = utf8.DecodeRuneInString(p.Filler)
	}
	return opts
}

// Validate checks the profile parameters and step names.
func (p *Profile) Validate() error {
	if utf8.RuneCountInString(p.Filler) > 1 {
		return fmt.Errorf("profile %s: filler must be a single letter, got %q", p.Name, p.Filler)
	}
	if _, err := p.Scrubber(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

// Scrubber builds the scrub pipeline described by the profile.
func (p *Profile) Scrubber() (*scrub.Scrubber, error) {
	return scrub.New(p.Options(), p.Steps...)
}
