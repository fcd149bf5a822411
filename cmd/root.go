package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	"sidefx.dev/pkg/sidefx/internal/controller"
	"sidefx.dev/pkg/sidefx/internal/domain"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var bundler adapter.BundlerAdapter
var scriptParser adapter.ScriptParserAdapter
var baselineStore adapter.BaselineStore
var entryBuilder domain.EntryBuilder
var extractor domain.Extractor
var linter domain.Linter
var ui controller.UI

// cwdFlag is a root-level flag overriding the directory relative module
// references are resolved against.
var cwdFlag string

const rootLongDescription = `sidefx determines what code runs merely by importing the given ES modules,
without calling anything they export.

It bundles the modules through a synthetic entry, lets tree shaking and
constant folding remove everything provably pure, and prints the residue.
An empty residue means the import is free: unused imports of these modules
produce zero bundled code.`

const checkLongDescription = `Extract the import-time side effects of one or more ES modules.

The residual code is printed to standard output, or written together with a
source map when --output is given. Looser purity assumptions (pure getters,
side-effect-free dependencies) shrink the residue but can hide real effects;
stricter ones keep more code and can report false positives.`

const testLongDescription = `Run a declarative side-effect test suite against stored baselines.

Module and baseline paths inside the suite file are resolved relative to the
suite's directory. Cases run one at a time, in declaration order. A missing
baseline file compares as empty, so a first run with --update populates it.`

const lintLongDescription = `Statically flag property or element access reachable at module top level.

Property reads can invoke getters, which keeps dead-code elimination from
removing them. Code inside functions, classes and arrow functions is skipped:
it does not execute merely by loading the module.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidefx",
		Short: "Import-time side-effect checker for ES modules",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Failures are domain results here (missing modules, failed cases), not
	// usage mistakes.
	cmd.SilenceUsage = true

	return cmd
}

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	bundler = adapter.NewEsbuildAdapter()
	scriptParser = adapter.NewTreeSitterAdapter()
	baselineStore = adapter.NewLocalBaselineStore(fsAdapter)
	entryBuilder = domain.NewEntryBuilder(fsAdapter)
	extractor = domain.NewExtractor(fsAdapter, bundler, entryBuilder, scriptParser)
	linter = domain.NewLinter(fsAdapter)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&cwdFlag, cwdFlagName,
		viper.GetString(cwdFlagName),
		"working directory for resolving relative module references",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(cwdFlagName), cwdFlagName)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values
// feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
