package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sidefx.dev/pkg/sidefx/internal/domain"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

var testUpdateFlag bool

// testCmd represents the test command.
var testCmd = newTestCmd()

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <suite.yaml>",
		Short: "Run a side-effect regression test suite",
		Long:  testLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := m.DefaultConfig()

			harness := domain.NewHarness(fsAdapter, extractor, baselineStore, ui, defaults)

			result, err := harness.Run(cmd.Context(), m.Path(args[0]), testUpdateFlag)

			ui.Wait(cmd.Context())

			if err != nil {
				return err
			}

			if failed := result.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d case(s) failed", len(failed), len(result.Cases))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&testUpdateFlag, updateFlagName, "u", false,
		"rewrite mismatching baselines instead of failing")

	return cmd
}

func init() {
	rootCmd.AddCommand(testCmd)
}
