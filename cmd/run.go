package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/scrubber/batch"
	"github.com/lehigh-university-libraries/scrubber/config"
	"github.com/lehigh-university-libraries/scrubber/dialect"
	"github.com/lehigh-university-libraries/scrubber/profile"
	"github.com/lehigh-university-libraries/scrubber/report"
	"github.com/lehigh-university-libraries/scrubber/tabular"
)

var (
	runDirty        string
	runClean        string
	runProfile      string
	runProfileFile  string
	runWorkers      int
	runSentinel     string
	runSampleSize   int
	runReport       string
	runReportFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrub every supported file of a directory",
	Long: `Scrub every delimited text file (txt, csv, tsv) and workbook (xlsx) of the
dirty directory and write the corrected copies to the clean directory.

Header fields, sheet titles and file names are scrubbed; data rows are
copied unchanged. Files with other extensions are skipped with a warning.
A failing file is reported and the run continues with the next one.

Settings default to SCRUBBER_* environment variables (also read from a .env
file); flags override them.

Examples:
  scrubber run
  scrubber run -d dirty -c clean
  scrubber run -d dirty -c clean -p postgres -w 4
  scrubber run --profile-file naming.yaml --report run.json --report-format json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runDirty, "dirty", "d", "dirty", "Directory of files to scrub")
	runCmd.Flags().StringVarP(&runClean, "clean", "c", "clean", "Directory for scrubbed files")
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", profile.DefaultName, "Scrub profile name")
	runCmd.Flags().StringVar(&runProfileFile, "profile-file", "", "Custom profile YAML file")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 1, "Files processed concurrently")
	runCmd.Flags().StringVar(&runSentinel, "sentinel", batch.DefaultSentinel, "File name ignored without warning")
	runCmd.Flags().IntVar(&runSampleSize, "sample-size", dialect.DefaultSampleSize, "Bytes read to infer a delimited file's dialect")
	runCmd.Flags().StringVar(&runReport, "report", "", "Write a run report to this file")
	runCmd.Flags().StringVar(&runReportFormat, "report-format", report.FormatYAML, "Run report format (yaml, json)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := profile.Resolve(cfg.Profile, cfg.ProfileFile)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	s, err := p.Scrubber()
	if err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}

	openOpts := tabular.NewOpenOptions()
	openOpts.SampleSize = cfg.SampleSize

	rep, err := batch.Run(cmd.Context(), batch.Options{
		Dirty:       cfg.Dirty,
		Clean:       cfg.Clean,
		Sentinel:    cfg.Sentinel,
		Workers:     cfg.Workers,
		Profile:     p.Name,
		Scrubber:    s,
		OpenOptions: openOpts,
	})
	if rep != nil {
		rep.Print(cmd.OutOrStdout())
		if cfg.Report != "" {
			if werr := writeReport(rep, cfg.Report, cfg.ReportFormat); werr != nil {
				return werr
			}
		}
	}
	return err
}

// applyRunFlags copies flags given on the command line over cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dirty") {
		cfg.Dirty = runDirty
	}
	if flags.Changed("clean") {
		cfg.Clean = runClean
	}
	if flags.Changed("profile") {
		cfg.Profile = runProfile
	}
	if flags.Changed("profile-file") {
		cfg.ProfileFile = runProfileFile
	}
	if flags.Changed("workers") {
		cfg.Workers = runWorkers
	}
	if flags.Changed("sentinel") {
		cfg.Sentinel = runSentinel
	}
	if flags.Changed("sample-size") {
		cfg.SampleSize = runSampleSize
	}
	if flags.Changed("report") {
		cfg.Report = runReport
	}
	if flags.Changed("report-format") {
		cfg.ReportFormat = runReportFormat
	}
}

func writeReport(rep *report.Report, path, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report file: %w", cerr)
		}
	}()

	if err := rep.Write(f, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
