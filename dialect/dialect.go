// Package dialect infers and reproduces the conventions of delimited text files.
//
// A Dialect is inferred once per file from a leading byte sample and is then
// used both to read the file and to write its rewritten copy, so the output
// keeps the source's delimiter, quote character and line terminator.
package dialect

import (
	"errors"
	"fmt"
	"strconv"
)

// DefaultSampleSize is the number of leading bytes inspected by Detect.
const DefaultSampleSize = 1024

// ErrNoDelimiter is returned when a sample carries no evidence of a delimiter.
var ErrNoDelimiter = errors.New("could not determine delimiter")

// Dialect describes the delimiter, quoting and line termination of a file.
type Dialect struct {
	// Delimiter separates fields
	Delimiter rune

	// Quote encloses fields containing special characters
	Quote rune

	// LineTerminator ends every written record ("\n", "\r\n" or "\r")
	LineTerminator string

	// DoubleQuote means a quote inside a quoted field is written twice
	DoubleQuote bool

	// SkipInitialSpace ignores spaces following a delimiter when reading
	SkipInitialSpace bool
}

// Comma is the RFC 4180 style dialect.
var Comma = Dialect{Delimiter: ',', Quote: '"', LineTerminator: "\r\n", DoubleQuote: true}

// Tab is the tab-separated dialect.
var Tab = Dialect{Delimiter: '\t', Quote: '"', LineTerminator: "\n", DoubleQuote: true}

// Validate checks that the dialect can be used to read and write.
func (d Dialect) Validate() error {
	if d.Delimiter == 0 {
		return errors.New("dialect has no delimiter")
	}
	if d.Delimiter == d.Quote {
		return fmt.Errorf("delimiter and quote are both %q", d.Delimiter)
	}
	if d.Delimiter == '\r' || d.Delimiter == '\n' || d.Quote == '\r' || d.Quote == '\n' {
		return errors.New("delimiter and quote cannot be line breaks")
	}
	switch d.LineTerminator {
	case "\n", "\r\n", "\r":
	default:
		return fmt.Errorf("unsupported line terminator %q", d.LineTerminator)
	}
	return nil
}

// String returns a short human-readable description.
func (d Dialect) String() string {
	return fmt.Sprintf("delimiter=%s quote=%s terminator=%s skipinitialspace=%t",
		strconv.QuoteRune(d.Delimiter), strconv.QuoteRune(d.Quote),
		strconv.Quote(d.LineTerminator), d.SkipInitialSpace)
}

// Sniffer infers a Dialect from a leading sample of a file.
type Sniffer interface {
	Sniff(sample []byte) (Dialect, error)
}

// SnifferFunc adapts a function to the Sniffer interface.
type SnifferFunc func(sample []byte) (Dialect, error)

// Sniff calls f(sample).
func (f SnifferFunc) Sniff(sample []byte) (Dialect, error) {
	return f(sample)
}
