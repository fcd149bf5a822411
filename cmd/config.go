// Package cmd provides the root command and CLI setup for sidefx.
package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "sidefx"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	cwdFlagName    = "cwd"
	outputFlagName = "output"
	filterFlagName = "filter"
	updateFlagName = "update"

	pureGettersFlagName       = "pure-getters"
	defineFlagName            = "define"
	sideEffectFreeFlagName    = "side-effect-free"
	resolveExternalsFlagName  = "resolve-externals"
	printDependenciesFlagName = "print-dependencies"
	noAnnotatorFlagName       = "no-annotator"
	noMinifierFlagName        = "no-minifier"
	warningsFlagName          = "warnings"

	pureGettersKey       = "check.pure_getters"
	sideEffectFreeKey    = "check.side_effect_free"
	resolveExternalsKey  = "check.resolve_externals"
	printDependenciesKey = "check.print_dependencies"
	annotatorKey         = "check.annotator"
	minifierKey          = "check.minifier"
	warningsKey          = "check.warnings"
	lintFilterKey        = "lint.filter"

	envPrefix = "SIDEFX"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".sidefx.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(cwdFlagName, "")
	viper.SetDefault(outputFlagName, "")

	// Pipeline defaults. Property reads are assumed pure and every
	// transitive dependency is assumed side-effect free; both can be
	// tightened per invocation.
	viper.SetDefault(pureGettersKey, true)
	viper.SetDefault(sideEffectFreeKey, []string{""})
	viper.SetDefault(resolveExternalsKey, false)
	viper.SetDefault(printDependenciesKey, false)
	viper.SetDefault(annotatorKey, true)
	viper.SetDefault(minifierKey, true)
	viper.SetDefault(warningsKey, false)
	viper.SetDefault(lintFilterKey, []string{})

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
