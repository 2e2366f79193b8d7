package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/scrubber/dialect"
)

var sniffSampleSize int

var sniffCmd = &cobra.Command{
	Use:   "sniff <file>...",
	Short: "Show the inferred dialect of delimited text files",
	Long: `Infer the delimiter, quote character and line terminator of each file
from its first bytes, the same way run does.

Examples:
  scrubber sniff dirty/sites.txt
  scrubber sniff --sample-size 4096 dirty/*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sniffer := dialect.NewSniffer()
		out := cmd.OutOrStdout()

		failed := 0
		for _, path := range args {
			d, err := sniffFile(path, sniffer)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", path, d)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) could not be sniffed", failed, len(args))
		}
		return nil
	},
}

func sniffFile(path string, s dialect.Sniffer) (dialect.Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		return dialect.Dialect{}, err
	}
	defer f.Close()

	return dialect.Detect(f, s, sniffSampleSize)
}

func init() {
	sniffCmd.Flags().IntVar(&sniffSampleSize, "sample-size", dialect.DefaultSampleSize, "Bytes read to infer the dialect")
}
