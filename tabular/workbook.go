package tabular

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Workbook handles multi-sheet spreadsheet workbooks (xlsx).
type Workbook struct{}

var _ Handler = (*Workbook)(nil)

// Name returns the handler identifier.
func (h *Workbook) Name() string {
	return "workbook"
}

// Description returns a human-readable description.
func (h *Workbook) Description() string {
	return "Office Open XML spreadsheet workbook"
}

// Extensions returns file extensions associated with workbooks.
func (h *Workbook) Extensions() []string {
	return []string{"xlsx"}
}

// Open loads the whole workbook into memory.
func (h *Workbook) Open(path string, _ *OpenOptions) (Container, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, unreadable(err)
	}
	if !isZipContainer(mt) {
		return nil, unreadable(fmt.Errorf("%w: %s is %s, not a zip package", ErrMalformedWorkbook, path, mt.String()))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, unreadable(fmt.Errorf("%w: %w", ErrMalformedWorkbook, err))
	}
	return &workbook{f: f}, nil
}

func isZipContainer(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

type workbook struct {
	f *excelize.File
}

func (w *workbook) Tables() ([]Table, error) {
	names := w.f.GetSheetList()
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		tables = append(tables, &sheet{f: w.f, name: name})
	}
	return tables, nil
}

func (w *workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

func (w *workbook) Close() error {
	return w.f.Close()
}

// sheet is one worksheet; row 1 is its header row.
type sheet struct {
	f      *excelize.File
	name   string
	header []string
}

func (s *sheet) Title() (string, bool) {
	return s.name, true
}

func (s *sheet) Rename(title string) error {
	if err := s.f.SetSheetName(s.name, title); err != nil {
		return err
	}
	s.name = title
	return nil
}

// Header returns the raw text of row 1. Formula cells are returned as
// "=" followed by the formula, numbers in their stored text form.
func (s *sheet) Header() ([]string, error) {
	if s.header != nil {
		return s.header, nil
	}

	rows, err := s.f.Rows(s.name)
	if err != nil {
		return nil, unreadable(fmt.Errorf("sheet %q: %w", s.name, err))
	}
	defer func() { _ = rows.Close() }()

	header := []string{}
	if rows.Next() {
		header, err = rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, unreadable(fmt.Errorf("sheet %q header: %w", s.name, err))
		}
	}
	if err := rows.Error(); err != nil {
		return nil, unreadable(fmt.Errorf("sheet %q: %w", s.name, err))
	}

	for i := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		formula, err := s.f.GetCellFormula(s.name, cell)
		if err != nil {
			return nil, unreadable(fmt.Errorf("sheet %q cell %s: %w", s.name, cell, err))
		}
		if formula != "" {
			header[i] = "=" + formula
		}
	}

	s.header = header
	return header, nil
}

// SetHeader overwrites only the header cells whose value changed.
func (s *sheet) SetHeader(header []string) error {
	prev, err := s.Header()
	if err != nil {
		return err
	}

	for i, value := range header {
		if i < len(prev) && prev[i] == value {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := s.f.SetCellStr(s.name, cell, value); err != nil {
			return fmt.Errorf("sheet %q cell %s: %w", s.name, cell, err)
		}
	}

	s.header = header
	return nil
}

func init() {
	Register(&Workbook{})
}
