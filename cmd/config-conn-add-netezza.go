package cmd

import (
	"fmt"

	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnAddNetezzaCfg = &actions.ConnectionConfig{}
var netezzaConn = shared.NetezzaConnectionDetails{}

var configConnAddNetezzaCmd = &cobra.Command{
	Use:   "netezza",
	Short: "Save a Netezza database as a source of table definitions",
	Long: fmt.Sprintf(`Save a Netezza database that generate can read source table definitions from.
The DSN takes the form:

  netezza://<user>/<password>@//<host>:<port>/<database>[?<key>=<value>&...]

Supported keys are sslmode (disable | require | verify-ca), sslcert, sslkey,
sslrootcert and securityLevel (0-3).
Column types are read from the catalog and mapped to SQL Server types for the staging tables.

Connections are stored in %q`, config.Connections.FullPath),
	Example: `  makedw config connections add netezza -c nz -d 'netezza://admin/secret@//nz01:5480/SALES'
  makedw generate --source nz.ADMIN --output ./warehouse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		configConnAddNetezzaCfg.Type = constants.ConnectionTypeNetezza
		configConnAddNetezzaCfg.ConfigFile = getConnectionStore()
		configConnAddNetezzaCfg.ConnDetails = netezzaConn
		configConnAddNetezzaCfg.Out = cmd.OutOrStdout()
		return actions.RunConnectionAdd(configConnAddNetezzaCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddNetezzaCmd)
	configConnAddNetezzaCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddNetezzaCmd, &configConnAddNetezzaCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddNetezzaCmd, &netezzaConn.Dsn, "dsn", "", true, "")
	switches.addFlag(configConnAddNetezzaCmd, &configConnAddNetezzaCfg.Force, "force-connection", "", false, "")
}
