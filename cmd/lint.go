package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sidefx.dev/pkg/sidefx/internal/domain/rules"
)

var lintFilterFlag []string

// lintCmd represents the lint command.
var lintCmd = newLintCmd()

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Flag toplevel property access in script files",
		Long:  lintLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := rules.NewToplevelAccess(scriptParser, viper.GetStringSlice(lintFilterKey))

			findings, err := linter.Lint(cmd.Context(), parsePaths(args), []rules.Rule{rule})
			if err != nil {
				return err
			}

			ui.DisplayFindings(cmd.Context(), findings)

			if len(findings) > 0 {
				return fmt.Errorf("%d toplevel property access(es) found", len(findings))
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&lintFilterFlag, filterFlagName,
		viper.GetStringSlice(lintFilterKey),
		"only examine files whose path contains this substring (repeatable)")
	bindFlagToConfig(cmd.Flags().Lookup(filterFlagName), lintFilterKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
