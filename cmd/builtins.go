package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/octane/core/shell"
)

// builtinsCmd lists the commands the shell handles itself
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands and aliases of the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var builtins []string

		for _, b := range shell.Builtins() {
			builtins = append(builtins, "builtin:"+b.String())
		}

		aliases := shell.NewAliasTable(cfg.Aliases)
		for _, name := range aliases.Names() {
			expansion, _ := aliases.Lookup(name)
			builtins = append(builtins, fmt.Sprintf("alias:%s=%s", name, expansion))
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
