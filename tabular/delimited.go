package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lehigh-university-libraries/scrubber/dialect"
)

// Delimited handles delimited text files (csv, tsv, txt) of unknown dialect.
type Delimited struct{}

var _ Handler = (*Delimited)(nil)

// Name returns the handler identifier.
func (h *Delimited) Name() string {
	return "delimited"
}

// Description returns a human-readable description.
func (h *Delimited) Description() string {
	return "Delimited text (dialect sniffed from the first bytes)"
}

// Extensions returns file extensions associated with delimited text.
func (h *Delimited) Extensions() []string {
	return []string{"txt", "csv", "tsv"}
}

// Open sniffs the dialect of path and positions it at the first record.
func (h *Delimited) Open(path string, opts *OpenOptions) (Container, error) {
	if opts == nil {
		opts = NewOpenOptions()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(err)
	}

	d, err := dialect.Detect(f, opts.Sniffer, opts.SampleSize)
	if err != nil {
		_ = f.Close()
		return nil, unreadable(fmt.Errorf("sniffing %s: %w", path, err))
	}

	return &delimitedFile{
		f:       f,
		dialect: d,
		reader:  dialect.NewReader(f, d),
	}, nil
}

// delimitedFile is a single untitled table streamed from its source.
type delimitedFile struct {
	f       *os.File
	dialect dialect.Dialect
	reader  *dialect.Reader

	header     []string
	headerRead bool
}

// Dialect returns the dialect sniffed from the source.
func (c *delimitedFile) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *delimitedFile) Tables() ([]Table, error) {
	return []Table{c}, nil
}

func (c *delimitedFile) Title() (string, bool) {
	return "", false
}

func (c *delimitedFile) Rename(string) error {
	return errors.New("delimited text has no title")
}

func (c *delimitedFile) Header() ([]string, error) {
	if c.headerRead {
		return c.header, nil
	}

	header, err := c.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, unreadable(errors.New("file has no header row"))
	}
	if err != nil {
		return nil, unreadable(fmt.Errorf("reading header: %w", err))
	}

	c.header = header
	c.headerRead = true
	return header, nil
}

func (c *delimitedFile) SetHeader(header []string) error {
	if _, err := c.Header(); err != nil {
		return err
	}
	c.header = header
	return nil
}

// WriteTo writes the header followed by every remaining record, re-encoded
// in the source dialect.
func (c *delimitedFile) WriteTo(w io.Writer) (int64, error) {
	header, err := c.Header()
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	out := dialect.NewWriter(cw, c.dialect)
	if err := out.Write(header); err != nil {
		return cw.n, err
	}

	for {
		record, err := c.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cw.n, unreadable(fmt.Errorf("reading record %d: %w", c.reader.Line(), err))
		}
		if err := out.Write(record); err != nil {
			return cw.n, err
		}
	}

	if err := out.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func (c *delimitedFile) Close() error {
	return c.f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func init() {
	Register(&Delimited{})
}
