package cmd

import (
	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
)

var defaultRemoveCfg = actions.DefaultRemoveConfig{}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "unset"},
	Short:   "Forget a saved default",
	Long:    "Forget a saved default so the flag falls back to its built-in value",
	Example: `  makedw config defaults remove -k scd-type`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		defaultRemoveCfg.ConfigFile = config.Main
		defaultRemoveCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultRemoveCmd)
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "* Flag name whose default should be forgotten")
	_ = defaultRemoveCmd.MarkFlagRequired("key")
}
