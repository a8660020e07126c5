package cmd

import (
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical connection (source database or S3 bucket) for use with the generate command.`,
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
}
