package dialect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader reads records from delimited text in a given Dialect.
// Any of "\n", "\r\n" or "\r" ends a record outside quotes. A blank line is
// returned as an empty record so it can be written back unchanged.
type Reader struct {
	d    Dialect
	br   *bufio.Reader
	line int
}

// NewReader returns a Reader for r.
func NewReader(r io.Reader, d Dialect) *Reader {
	return &Reader{d: d, br: bufio.NewReader(r)}
}

// Line returns the number of the record last returned by Read.
func (r *Reader) Line() int {
	return r.line
}

type readState int

const (
	startField readState = iota
	inField
	inQuoted
	quoteInQuoted
)

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() ([]string, error) {
	first, _, err := r.br.ReadRune()
	if err != nil {
		return nil, err
	}
	r.line++

	switch first {
	case '\n':
		return []string{}, nil
	case '\r':
		if err := r.skipLF(); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	if err := r.br.UnreadRune(); err != nil {
		return nil, err
	}

	var (
		fields []string
		field  strings.Builder
		state  = startField
	)
	push := func() {
		fields = append(fields, field.String())
		field.Reset()
	}

	for {
		c, _, err := r.br.ReadRune()
		if errors.Is(err, io.EOF) {
			push()
			return fields, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}

		switch state {
		case startField:
			switch {
			case c == r.d.Quote:
				state = inQuoted
			case c == ' ' && r.d.SkipInitialSpace:
			case c == r.d.Delimiter:
				push()
			case c == '\n':
				push()
				return fields, nil
			case c == '\r':
				push()
				return fields, r.skipLF()
			default:
				field.WriteRune(c)
				state = inField
			}

		case inField:
			switch c {
			case r.d.Delimiter:
				push()
				state = startField
			case '\n':
				push()
				return fields, nil
			case '\r':
				push()
				return fields, r.skipLF()
			default:
				field.WriteRune(c)
			}

		case inQuoted:
			if c == r.d.Quote {
				if r.d.DoubleQuote {
					state = quoteInQuoted
				} else {
					state = inField
				}
				continue
			}
			field.WriteRune(c)

		case quoteInQuoted:
			switch c {
			case r.d.Quote:
				field.WriteRune(c)
				state = inQuoted
			case r.d.Delimiter:
				push()
				state = startField
			case '\n':
				push()
				return fields, nil
			case '\r':
				push()
				return fields, r.skipLF()
			default:
				// text after a closing quote is kept as part of the field
				field.WriteRune(c)
				state = inField
			}
		}
	}
}

func (r *Reader) skipLF() error {
	c, _, err := r.br.ReadRune()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if c != '\n' {
		return r.br.UnreadRune()
	}
	return nil
}

// Writer writes records as delimited text in a given Dialect, quoting only
// fields that need it.
type Writer struct {
	d  Dialect
	bw *bufio.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer, d Dialect) *Writer {
	return &Writer{d: d, bw: bufio.NewWriter(w)}
}

// Write writes a single record followed by the dialect's line terminator.
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := w.bw.WriteRune(w.d.Delimiter); err != nil {
				return err
			}
		}
		if err := w.writeField(field, len(record) == 1); err != nil {
			return err
		}
	}
	_, err := w.bw.WriteString(w.d.LineTerminator)
	return err
}

func (w *Writer) writeField(field string, only bool) error {
	if !w.needsQuotes(field, only) {
		_, err := w.bw.WriteString(field)
		return err
	}

	if _, err := w.bw.WriteRune(w.d.Quote); err != nil {
		return err
	}
	for _, c := range field {
		if c == w.d.Quote {
			if _, err := w.bw.WriteRune(c); err != nil {
				return err
			}
		}
		if _, err := w.bw.WriteRune(c); err != nil {
			return err
		}
	}
	_, err := w.bw.WriteRune(w.d.Quote)
	return err
}

func (w *Writer) needsQuotes(field string, only bool) bool {
	if field == "" {
		// a lone empty field would otherwise read back as a blank line
		return only
	}
	if w.d.SkipInitialSpace && field[0] == ' ' {
		return true
	}
	return strings.ContainsRune(field, w.d.Delimiter) ||
		strings.ContainsRune(field, w.d.Quote) ||
		strings.ContainsAny(field, "\r\n")
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
