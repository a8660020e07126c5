package cmd

import (
	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
)

var configDefaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print saved defaults as flags",
	Long:    "Print saved defaults one per line in the form --<flag>=<value>",
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunDefaultList(config.Main, cmd.OutOrStdout())
	},
}

func init() {
	defaultCmd.AddCommand(configDefaultListCmd)
}
