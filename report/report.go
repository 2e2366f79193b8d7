// Package report collects per-file scrub results and renders them for people
// (console) and machines (YAML or JSON run reports).
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/scrubber/tabular"
)

// Status is the outcome of one directory entry.
type Status string

const (
	StatusScrubbed Status = "scrubbed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
)

// Report formats accepted by Write.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FileResult describes what happened to one source file.
type FileResult struct {
	Source          string                `yaml:"source" json:"source"`
	Output          string                `yaml:"output,omitempty" json:"output,omitempty"`
	Format          string                `yaml:"format,omitempty" json:"format,omitempty"`
	Status          Status                `yaml:"status" json:"status"`
	FilenameChanged bool                  `yaml:"filename_changed" json:"filename_changed"`
	HeaderChanged   bool                  `yaml:"header_changed" json:"header_changed"`
	TitleChanged    bool                  `yaml:"title_changed" json:"title_changed"`
	Bytes           int64                 `yaml:"bytes,omitempty" json:"bytes,omitempty"`
	Tables          []tabular.TableResult `yaml:"tables,omitempty" json:"tables,omitempty"`
	Error           string                `yaml:"error,omitempty" json:"error,omitempty"`

	// Err is the failure or skip reason, if any
	Err error `yaml:"-" json:"-"`
}

// Report is the result of one directory run.
type Report struct {
	Dirty    string       `yaml:"dirty" json:"dirty"`
	Clean    string       `yaml:"clean" json:"clean"`
	Profile  string       `yaml:"profile" json:"profile"`
	Started  time.Time    `yaml:"started" json:"started"`
	Finished time.Time    `yaml:"finished" json:"finished"`
	Files    []FileResult `yaml:"files" json:"files"`
}

// Counts returns the number of scrubbed, failed and skipped files.
func (r *Report) Counts() (scrubbed, failed, skipped int) {
	for _, f := range r.Files {
		switch f.Status {
		case StatusScrubbed:
			scrubbed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return scrubbed, failed, skipped
}

// Print writes the human-readable console report.
func (r *Report) Print(w io.Writer) {
	for _, f := range r.Files {
		f.Print(w)
	}
	scrubbed, failed, skipped := r.Counts()
	fmt.Fprintf(w, "\nScrubbed %d file(s), %d failed, %d skipped.\n", scrubbed, failed, skipped)
}

// Print writes the console lines for one file.
func (f *FileResult) Print(w io.Writer) {
	switch f.Status {
	case StatusSkipped:
		fmt.Fprintf(w, "Skipping %s: %v\n", f.Source, f.Err)
		return
	case StatusFailed:
		fmt.Fprintf(w, "Scrubbing %s:\n\tFailed: %v\n", f.Source, f.Err)
		return
	}

	fmt.Fprintf(w, "Scrubbing %s:\n", f.Source)
	if f.FilenameChanged {
		fmt.Fprintln(w, "\tFilename errors found and corrected.")
	} else {
		fmt.Fprintln(w, "\tNo file naming errors found.")
	}

	for _, t := range f.Tables {
		if t.Title == "" && t.ScrubbedTitle == "" {
			continue
		}
		if t.TitleChanged {
			fmt.Fprintf(w, "\tSheet %q: title corrected as %q.\n", t.Title, t.ScrubbedTitle)
		}
		if t.HeaderChanged {
			fmt.Fprintf(w, "\tSheet %q: header errors found and corrected.\n", t.ScrubbedTitle)
		}
	}

	if f.HeaderChanged {
		fmt.Fprintln(w, "\tHeader errors found and corrected.")
	} else {
		fmt.Fprintln(w, "\tNo header errors found.")
	}
	fmt.Fprintf(w, "\tWrote %s (%s).\n", f.Output, humanize.Bytes(uint64(f.Bytes)))
}

// Write renders the report in the given format ("yaml" or "json").
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatYAML, "":
		return r.WriteYAML(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

// WriteYAML renders the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.withErrors()); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	st, err := structpb.NewStruct(r.toMap())
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return err
	}
	return nil
}

// withErrors copies the report with Error filled from Err.
func (r *Report) withErrors() *Report {
	cp := *r
	cp.Files = make([]FileResult, len(r.Files))
	for i, f := range r.Files {
		if f.Err != nil && f.Error == "" {
			f.Error = f.Err.Error()
		}
		cp.Files[i] = f
	}
	return &cp
}

func (r *Report) toMap() map[string]any {
	files := make([]any, 0, len(r.Files))
	for _, f := range r.withErrors().Files {
		tables := make([]any, 0, len(f.Tables))
		for _, t := range f.Tables {
			tables = append(tables, map[string]any{
				"title":           t.Title,
				"scrubbed_title":  t.ScrubbedTitle,
				"title_changed":   t.TitleChanged,
				"header":          stringList(t.Header),
				"scrubbed_header": stringList(t.ScrubbedHeader),
				"header_changed":  t.HeaderChanged,
			})
		}

		entry := map[string]any{
			"source":           f.Source,
			"status":           string(f.Status),
			"filename_changed": f.FilenameChanged,
			"header_changed":   f.HeaderChanged,
			"title_changed":    f.TitleChanged,
			"tables":           tables,
		}
		if f.Output != "" {
			entry["output"] = f.Output
		}
		if f.Format != "" {
			entry["format"] = f.Format
		}
		if f.Bytes > 0 {
			entry["bytes"] = f.Bytes
		}
		if f.Error != "" {
			entry["error"] = f.Error
		}
		files = append(files, entry)
	}

	return map[string]any{
		"dirty":    r.Dirty,
		"clean":    r.Clean,
		"profile":  r.Profile,
		"started":  r.Started.Format(time.RFC3339),
		"finished": r.Finished.Format(time.RFC3339),
		"files":    files,
	}
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
