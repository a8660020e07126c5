package cmd

import (
	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var defaultAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"set"},
	Short:   "Save a default value for a flag",
	Example: `  makedw config defaults add -k config -v ./warehouse.yaml
  makedw config defaults add -k concurrency -v 8 --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		defaultAddCfg.ConfigFile = config.Main
		defaultAddCfg.KnownKeys = knownDefaultKeys()
		defaultAddCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultAddCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* Flag name the default applies to, e.g. scd-type")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* Value used when the flag is not given")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Replace a default that is already saved")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
}
