package cmd

import (
	"fmt"

	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/aws/s3"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/spf13/cobra"
)

var configConnS3 = &actions.ConnectionConfig{}
var s3Conn = s3.AwsS3Bucket{}
var s3Dsn string

var configConnAddS3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "Add an AWS S3 bucket for generated scripts",
	Long: fmt.Sprintf(`Add an AWS S3 bucket to the config store %q. 

Provide a URL or supply individual flags. 
The URL takes precedence and should be of the form:

s3://<bucket name>/<prefix>

Use the connection name as the generate --output value.`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		if s3Dsn != "" {
			b, err := s3.ParseDSN(s3Dsn, s3Conn.Region)
			if err != nil {
				return err
			}
			s3Conn = b
		}
		configConnS3.Type = constants.ConnectionTypeS3
		configConnS3.ConfigFile = getConnectionStore()
		configConnS3.ConnDetails = &s3Conn
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnS3)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddS3Cmd)
	configConnAddS3Cmd.Flags().SortFlags = false
	switches.addFlag(configConnAddS3Cmd, &configConnS3.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddS3Cmd, &configConnS3.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Dsn, "s3-dsn", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Name, "s3-bucket", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Prefix, "s3-prefix", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Conn.Region, "s3-region", "eu-west-1", false, "")
}
