package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/change8/BiddingAssistant/internal/rules"
)

// newRulesCmd creates the `rules` command: load and display the checklist.
func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Load the rule checklist and print the parsed rules",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("rules.path", cmd.Flags().Lookup("rules"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("rules.path")
			if path == "" {
				return fmt.Errorf("no checklist file configured (--rules or rules.path)")
			}

			ruleSet, err := rules.LoadRules(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rules from %s\n", len(ruleSet), path)
			return printJSON(cmd.OutOrStdout(), ruleSet)
		},
	}

	rulesCmd.Flags().String("rules", "", "rule checklist file (overrides rules.path)")
	return rulesCmd
}
