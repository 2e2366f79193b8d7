// Package tabular rewrites tabular files with scrubbed header rows and titles.
//
// Delimited text and workbooks differ in I/O shape: delimited text streams
// row by row, workbooks are mutated in memory. Both are exposed as a Container
// of Tables so the header scrubbing happens in one place (Rewrite), and both
// are written through the same atomic output path.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/scrubber/dialect"
	"github.com/lehigh-university-libraries/scrubber/scrub"
)

var (
	// ErrUnsupportedFormat means no handler is registered for a file extension.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrInputUnreadable means a source file could not be opened or parsed.
	ErrInputUnreadable = errors.New("input unreadable")

	// ErrMalformedWorkbook means a workbook container is not a valid spreadsheet package.
	ErrMalformedWorkbook = errors.New("malformed workbook")

	// ErrTitleCollision means two tables of one container scrub to the same title.
	ErrTitleCollision = errors.New("scrubbed titles collide")
)

// Table is one titled or untitled grid whose first row is its header.
type Table interface {
	// Title returns the table title and whether the container names its tables.
	Title() (string, bool)

	// Rename changes the table title.
	Rename(title string) error

	// Header returns the raw header row. Empty cells are returned as "".
	Header() ([]string, error)

	// SetHeader replaces the header row written to the output.
	SetHeader(header []string) error
}

// Container is an opened tabular file.
type Container interface {
	// Tables returns the tables in container order.
	Tables() ([]Table, error)

	// WriteTo writes the whole, possibly modified, container to w.
	WriteTo(w io.Writer) (int64, error)

	// Close releases the source file.
	Close() error
}

// OpenOptions configures how handlers open source files.
type OpenOptions struct {
	// Sniffer infers the dialect of delimited text
	Sniffer dialect.Sniffer

	// SampleSize is the number of leading bytes given to the Sniffer
	SampleSize int
}

// NewOpenOptions creates OpenOptions with defaults.
func NewOpenOptions() *OpenOptions {
	return &OpenOptions{
		Sniffer:    dialect.NewSniffer(),
		SampleSize: dialect.DefaultSampleSize,
	}
}

// TableResult records what scrubbing changed in one table.
type TableResult struct {
	Title          string   `yaml:"title,omitempty" json:"title,omitempty"`
	ScrubbedTitle  string   `yaml:"scrubbed_title,omitempty" json:"scrubbed_title,omitempty"`
	TitleChanged   bool     `yaml:"title_changed" json:"title_changed"`
	Header         []string `yaml:"header" json:"header"`
	ScrubbedHeader []string `yaml:"scrubbed_header" json:"scrubbed_header"`
	HeaderChanged  bool     `yaml:"header_changed" json:"header_changed"`
}

// Result is the outcome of rewriting one file.
type Result struct {
	Tables []TableResult
	Bytes  int64
}

// HeaderChanged reports whether any table header was corrected.
func (r *Result) HeaderChanged() bool {
	for _, t := range r.Tables {
		if t.HeaderChanged {
			return true
		}
	}
	return false
}

// TitleChanged reports whether any table title was corrected.
func (r *Result) TitleChanged() bool {
	for _, t := range r.Tables {
		if t.TitleChanged {
			return true
		}
	}
	return false
}

// Process opens src with the handler registered for its extension and
// rewrites it to dst.
func Process(reg *Registry, src, dst string, s *scrub.Scrubber, opts *OpenOptions) (*Result, error) {
	h, err := reg.Lookup(src)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = NewOpenOptions()
	}

	c, err := h.Open(src, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			slog.Debug("closing source", "file", src, "error", cerr)
		}
	}()

	return Rewrite(c, s, dst)
}

// Rewrite scrubs every table title and header row of c and writes the
// result to dst. dst is either fully written or left untouched.
func Rewrite(c Container, s *scrub.Scrubber, dst string) (*Result, error) {
	tables, err := c.Tables()
	if err != nil {
		return nil, err
	}

	if err := checkTitles(tables, s); err != nil {
		return nil, err
	}

	result := &Result{Tables: make([]TableResult, 0, len(tables))}
	for _, t := range tables {
		tr := TableResult{}

		if title, ok := t.Title(); ok {
			tr.Title = title
			tr.ScrubbedTitle = s.Scrub(title)
			if tr.ScrubbedTitle != title {
				if err := t.Rename(tr.ScrubbedTitle); err != nil {
					return nil, fmt.Errorf("renaming %q: %w", title, err)
				}
				tr.TitleChanged = true
			}
		}

		header, err := t.Header()
		if err != nil {
			return nil, err
		}
		tr.Header = header
		tr.ScrubbedHeader = s.ScrubHeader(header)
		if scrub.Changed(header, tr.ScrubbedHeader) {
			if err := t.SetHeader(tr.ScrubbedHeader); err != nil {
				return nil, fmt.Errorf("writing header: %w", err)
			}
			tr.HeaderChanged = true
		}

		slog.Debug("scrubbed table", "title", tr.Title, "header_changed", tr.HeaderChanged, "title_changed", tr.TitleChanged)
		result.Tables = append(result.Tables, tr)
	}

	n, err := WriteAtomic(dst, c.WriteTo)
	if err != nil {
		return nil, err
	}
	result.Bytes = n
	return result, nil
}

// checkTitles fails when two titles would be equal after scrubbing.
// Titles are compared case-insensitively, as spreadsheet applications do.
func checkTitles(tables []Table, s *scrub.Scrubber) error {
	seen := make(map[string]string)
	for _, t := range tables {
		title, ok := t.Title()
		if !ok {
			continue
		}
		key := strings.ToLower(s.Scrub(title))
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q and %q", ErrTitleCollision, prev, title)
		}
		seen[key] = title
	}
	return nil
}

// WriteAtomic writes to a temporary file next to dst and renames it over dst
// once write succeeds. On failure the temporary file is removed.
func WriteAtomic(dst string, write func(io.Writer) (int64, error)) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if n, err = write(tmp); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return 0, fmt.Errorf("syncing output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("setting output permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("moving output into place: %w", err)
	}
	return n, nil
}

func unreadable(err error) error {
	return fmt.Errorf("%w: %w", ErrInputUnreadable, err)
}
