package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

var checkDefineFlag map[string]string
var checkPureGettersFlag bool
var checkSideEffectFreeFlag []string
var checkResolveExternalsFlag bool
var checkPrintDependenciesFlag bool
var checkNoAnnotatorFlag bool
var checkNoMinifierFlag bool
var checkWarningsFlag bool
var checkOutputFlag string

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [modules...]",
		Short: "Extract import-time side effects of ES modules",
		Long:  checkLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := checkConfig()

			extraction, err := extractor.Extract(cmd.Context(), cfg, parsePaths(args))
			if err != nil {
				return err
			}

			if cfg.Warnings {
				ui.DisplayWarnings(cmd.Context(), extraction.Warnings)
			}

			if cfg.Output == "" {
				ui.DisplayResidue(cmd.Context(), extraction.Code)
			}

			if cfg.EmitDependencies {
				ui.DisplayDependencies(cmd.Context(), extraction.Dependencies)
			}

			return nil
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&checkOutputFlag, outputFlagName, "o", viper.GetString(outputFlagName),
		"write the residual code (plus source map) to this file instead of stdout")

	cmd.Flags().BoolVar(&checkPureGettersFlag, pureGettersFlagName, viper.GetBool(pureGettersKey),
		"assume property reads have no side effects")
	bindFlagToConfig(cmd.Flags().Lookup(pureGettersFlagName), pureGettersKey)

	cmd.Flags().StringToStringVar(&checkDefineFlag, defineFlagName, nil,
		"replace a global identifier with a literal value (name=value, repeatable)")

	cmd.Flags().StringArrayVar(&checkSideEffectFreeFlag, sideEffectFreeFlagName,
		viper.GetStringSlice(sideEffectFreeKey),
		"module-name substring assumed side-effect free; '' matches everything (repeatable)")
	bindFlagToConfig(cmd.Flags().Lookup(sideEffectFreeFlagName), sideEffectFreeKey)

	cmd.Flags().BoolVar(&checkResolveExternalsFlag, resolveExternalsFlagName,
		viper.GetBool(resolveExternalsKey),
		"bundle external packages into the graph instead of leaving them unresolved")
	bindFlagToConfig(cmd.Flags().Lookup(resolveExternalsFlagName), resolveExternalsKey)

	cmd.Flags().BoolVar(&checkPrintDependenciesFlag, printDependenciesFlagName,
		viper.GetBool(printDependenciesKey),
		"print every file the module graph walk visited")
	bindFlagToConfig(cmd.Flags().Lookup(printDependenciesFlagName), printDependenciesKey)

	cmd.Flags().BoolVar(&checkNoAnnotatorFlag, noAnnotatorFlagName, !viper.GetBool(annotatorKey),
		"disable marking compiler helper calls as pure")

	cmd.Flags().BoolVar(&checkNoMinifierFlag, noMinifierFlagName, !viper.GetBool(minifierKey),
		"disable constant folding and dead-branch removal")

	cmd.Flags().BoolVar(&checkWarningsFlag, warningsFlagName, viper.GetBool(warningsKey),
		"surface build warnings instead of suppressing them")
	bindFlagToConfig(cmd.Flags().Lookup(warningsFlagName), warningsKey)
}

// checkConfig assembles the pipeline configuration from defaults, config
// file, environment and flags.
func checkConfig() m.Config {
	cfg := m.DefaultConfig()

	cfg.Cwd = m.Path(viper.GetString(cwdFlagName))
	cfg.Output = m.Path(checkOutputFlag)
	cfg.PureGetters = viper.GetBool(pureGettersKey)
	cfg.SideEffectFreeModules = viper.GetStringSlice(sideEffectFreeKey)
	cfg.ResolveExternals = viper.GetBool(resolveExternalsKey)
	cfg.EmitDependencies = viper.GetBool(printDependenciesKey)
	cfg.UseAnnotator = !checkNoAnnotatorFlag
	cfg.UseMinifier = !checkNoMinifierFlag
	cfg.Warnings = viper.GetBool(warningsKey)

	for name, value := range checkDefineFlag {
		cfg.Define[name] = value
	}

	return cfg
}
