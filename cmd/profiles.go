package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/scrubber/profile"
	"github.com/lehigh-university-libraries/scrubber/scrub"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage scrub profiles",
	Long:  `List and inspect the naming-convention profiles used to scrub identifiers.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := profile.NewRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		profiles := registry.List()
		if len(profiles) == 0 {
			fmt.Fprintln(out, "No profiles found")
			return nil
		}

		fmt.Fprintln(out, "Available profiles:")
		for _, name := range profiles {
			p, _ := registry.Get(name)
			def := ""
			if name == profile.DefaultName {
				def = " (default)"
			}
			desc := ""
			if p.Description != "" {
				desc = " - " + p.Description
			}
			fmt.Fprintf(out, "  %s%s%s\n", name, def, desc)
		}

		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileName := args[0]

		registry, err := profile.NewRegistry()
		if err != nil {
			return err
		}

		p, ok := registry.Get(profileName)
		if !ok {
			return fmt.Errorf("unknown profile: %s", profileName)
		}

		// Print as YAML
		out, err := yaml.Marshal(p)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var profilesStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the scrub steps a profile can use",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-22s %s\n", "Step", "Description")
		fmt.Fprintf(out, "%-22s %s\n", "----", "-----------")
		for _, name := range scrub.StepNames() {
			desc, _ := scrub.StepDescription(name)
			fmt.Fprintf(out, "%-22s %s\n", name, desc)
		}
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesStepsCmd)
}
