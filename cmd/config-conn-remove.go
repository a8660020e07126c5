package cmd

import (
	"fmt"

	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
)

var connRemoveCfg = actions.ConnectionConfig{}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm"},
	Short:   "Forget a saved source or output connection",
	Long: fmt.Sprintf(`Forget a saved source database or S3 output connection.
Saved defaults that still name the connection, such as --source or --output, are left as they are.

Connections are stored in %q`, config.Connections.FullPath),
	Example: `  makedw config connections remove -c crm`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		connRemoveCfg.ConfigFile = getConnectionStore()
		connRemoveCfg.Out = cmd.OutOrStdout()
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

func initConnRemove() {
	configConnCmd.AddCommand(configConnRemoveCmd)
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true, "")
}
