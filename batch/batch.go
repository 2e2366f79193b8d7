// Package batch scrubs every supported file of a directory into another
// directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/scrubber/report"
	"github.com/lehigh-university-libraries/scrubber/scrub"
	"github.com/lehigh-university-libraries/scrubber/tabular"
)

// DefaultSentinel is the placeholder file kept in otherwise empty directories.
const DefaultSentinel = "_empty"

var (
	// ErrDirectoryMissing means the source directory does not exist.
	ErrDirectoryMissing = errors.New("source directory missing")

	// ErrOutputCollision means two inputs map to the same output name.
	ErrOutputCollision = errors.New("output name already used")
)

// Options configures a directory run.
type Options struct {
	// Dirty is the source directory
	Dirty string

	// Clean is the output directory, created when absent
	Clean string

	// Sentinel is a file name ignored without warning
	Sentinel string

	// Workers is the number of files processed concurrently
	Workers int

	// Profile names the scrub profile in the report
	Profile string

	Scrubber    *scrub.Scrubber
	Registry    *tabular.Registry
	OpenOptions *tabular.OpenOptions
}

func (o *Options) defaults() {
	if o.Sentinel == "" {
		o.Sentinel = DefaultSentinel
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Scrubber == nil {
		o.Scrubber = scrub.Default()
	}
	if o.Registry == nil {
		o.Registry = tabular.DefaultRegistry
	}
	if o.OpenOptions == nil {
		o.OpenOptions = tabular.NewOpenOptions()
	}
}

// job is one planned file.
type job struct {
	name    string
	output  string
	handler tabular.Handler
	result  *report.FileResult
}

// Run scrubs opts.Dirty into opts.Clean. Per-file failures are recorded in
// the report; only a missing source directory, an unusable output directory
// or cancellation return an error.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	opts.defaults()

	rep := &report.Report{
		Dirty:   opts.Dirty,
		Clean:   opts.Clean,
		Profile: opts.Profile,
		Started: time.Now().UTC(),
	}

	info, err := os.Stat(opts.Dirty)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryMissing, opts.Dirty)
		}
		return nil, fmt.Errorf("reading %s: %w", opts.Dirty, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryMissing, opts.Dirty)
	}

	if err := os.MkdirAll(opts.Clean, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.Clean, err)
	}

	jobs, err := plan(opts)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for _, j := range jobs {
		if j.handler == nil {
			continue
		}
		j := j // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			process(ctx, opts, j)
			return nil
		})
	}
	_ = g.Wait()

	rep.Files = make([]report.FileResult, 0, len(jobs))
	for _, j := range jobs {
		rep.Files = append(rep.Files, *j.result)
	}
	rep.Finished = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	return rep, nil
}

// plan lists the source directory and assigns every supported file its
// output name. Entries are returned in name order.
func plan(opts Options) ([]*job, error) {
	entries, err := os.ReadDir(opts.Dirty)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", opts.Dirty, err)
	}

	var jobs []*job
	planned := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			slog.Debug("skipping subdirectory", "dir", name)
			continue
		}
		if name == opts.Sentinel {
			continue
		}

		j := &job{
			name: name,
			result: &report.FileResult{
				Source: filepath.Join(opts.Dirty, name),
			},
		}
		jobs = append(jobs, j)

		h, err := opts.Registry.Lookup(name)
		if err != nil {
			slog.Warn("skipping file", "file", name, "error", err)
			j.result.Status = report.StatusSkipped
			j.result.Err = err
			continue
		}
		j.result.Format = h.Name()

		output, err := OutputName(opts.Scrubber, name)
		if err != nil {
			fail(j, err)
			continue
		}

		// output names are compared case-insensitively so runs behave the
		// same on case-folding filesystems
		key := strings.ToLower(output)
		if prev, dup := planned[key]; dup {
			fail(j, fmt.Errorf("%w: %s would overwrite output of %s", ErrOutputCollision, output, prev))
			continue
		}
		planned[key] = name

		j.handler = h
		j.output = output
		j.result.Output = filepath.Join(opts.Clean, output)
		j.result.FilenameChanged = output != name
	}
	return jobs, nil
}

// OutputName returns the scrubbed file name for name: the scrubbed stem
// followed by the original extension.
func OutputName(s *scrub.Scrubber, name string) (string, error) {
	stem, ext := scrub.Stem(name)
	clean := s.Scrub(stem)
	if clean == "" {
		return "", fmt.Errorf("file name %q has no usable characters", name)
	}
	if ext == "" {
		return clean, nil
	}
	return clean + "." + ext, nil
}

func process(ctx context.Context, opts Options, j *job) {
	if err := ctx.Err(); err != nil {
		fail(j, err)
		return
	}

	slog.Debug("scrubbing file", "file", j.name, "handler", j.handler.Name(), "output", j.output)
	res, err := tabular.Process(opts.Registry, j.result.Source, j.result.Output, opts.Scrubber, opts.OpenOptions)
	if err != nil {
		fail(j, err)
		return
	}

	j.result.Status = report.StatusScrubbed
	j.result.Tables = res.Tables
	j.result.HeaderChanged = res.HeaderChanged()
	j.result.TitleChanged = res.TitleChanged()
	j.result.Bytes = res.Bytes
}

func fail(j *job, err error) {
	slog.Error("scrubbing failed", "file", j.name, "error", err)
	j.result.Status = report.StatusFailed
	j.result.Err = err
	j.result.Output = ""
}
