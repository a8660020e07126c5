package cmd

import (
	"fmt"

	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnAddSqlServerCfg = &actions.ConnectionConfig{}
var sqlServerConn = shared.DsnConnectionDetails{}

var configConnAddSqlServerCmd = &cobra.Command{
	Use:   "sqlserver",
	Short: "Add a SQL Server connection",
	Long: fmt.Sprintf(`Add SQL Server database connection to the config store %q
by providing a DSN of the form: 

sqlserver://<user>:<pass>@<host>/<instance>?database=<dbname>[&<opt1>=<value1>&...]
`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddSqlServerCfg.Type = constants.ConnectionTypeSqlServer
		configConnAddSqlServerCfg.ConfigFile = getConnectionStore()
		configConnAddSqlServerCfg.ConnDetails = &sqlServerConn
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddSqlServerCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddSqlServerCmd)
	configConnAddSqlServerCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddSqlServerCmd, &configConnAddSqlServerCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddSqlServerCmd, &configConnAddSqlServerCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddSqlServerCmd, &sqlServerConn.Dsn, "dsn", "", true, "")
}
