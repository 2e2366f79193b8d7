package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/scrubber/profile"
)

var (
	identProfile     string
	identProfileFile string
)

var identCmd = &cobra.Command{
	Use:   "ident <raw>...",
	Short: "Scrub identifiers given on the command line",
	Long: `Print the scrubbed form of each argument, one per line.

Examples:
  scrubber ident "2020 Total (ft)" "pH-level"
  scrubber ident -p shapefile "Parcel Owner Name"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Resolve(identProfile, identProfileFile)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		s, err := p.Scrubber()
		if err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}

		out := cmd.OutOrStdout()
		for _, raw := range args {
			fmt.Fprintf(out, "%q -> %q\n", raw, s.Scrub(raw))
		}
		return nil
	},
}

func init() {
	identCmd.Flags().StringVarP(&identProfile, "profile", "p", profile.DefaultName, "Scrub profile name")
	identCmd.Flags().StringVar(&identProfileFile, "profile-file", "", "Custom profile YAML file")
}
