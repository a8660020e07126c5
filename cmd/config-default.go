package cmd

import (
	"fmt"
	"sort"

	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var defaultCmd = &cobra.Command{
	Use:     "defaults",
	Aliases: []string{"def"},
	Short:   "Save default values for generate and serve flags",
	Long: fmt.Sprintf(`Save values that generate and serve use when a flag is not given,
so a warehouse layout only needs to be typed once. For example:

  makedw config defaults add --key scd-type --value "Type 2"
  makedw config defaults add --key output --value ./warehouse

A key must be the name of a generate or serve flag without its leading dashes.
Flags given on the command line still win over saved defaults.
Defaults are stored in file %q`, config.Main.FullPath),
}

// knownDefaultKeys lists the flag names that a saved default can apply to.
func knownDefaultKeys() []string {
	seen := make(map[string]struct{})
	for _, c := range []*cobra.Command{generateCmd, serveCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if _, ok := switches[f.Name]; ok {
				seen[f.Name] = struct{}{}
			}
		})
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(defaultCmd)
}
