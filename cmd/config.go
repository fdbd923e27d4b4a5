package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "ocdsmap"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	envFileName      = ".env"

	mappingFlagName      = "mapping"
	driverFlagName       = "driver"
	connectionFlagName   = "connection"
	selectorFlagName     = "selector"
	outputFlagName       = "output"
	packageFlagName      = "package"
	prefixFlagName       = "prefix"
	forcePublishFlagName = "force-publish"
	codelistFlagName     = "codelist"
	metricsFileFlagName  = "metrics-file"
	bufferFlagName       = "buffer"
	shardFlagName        = "shard"
	logFileFlagName      = "log-file"
	verboseFlagName      = "verbose"

	driverConfigKey           = "datasource.driver"
	connectionConfigKey       = "datasource.connection"
	mappingFileConfigKey      = "mapping.file"
	ocidPrefixConfigKey       = "mapping.ocid_prefix"
	selectorConfigKey         = "mapping.selector"
	forcePublishConfigKey     = "mapping.force_publish"
	codelistsConfigKey        = "mapping.codelists"
	codelistFallbackConfigKey = "mapping.codelist_fallback"
	slotArraysConfigKey       = "mapping.slot_arrays"
	publishingConfigKey       = "publishing"
	outputDirConfigKey        = "output.directory"
	outputPackageConfigKey    = "output.package"
	spillDirConfigKey         = "output.spill_dir"
	metricsFileConfigKey      = "metrics.file"
	runBufferConfigKey        = "run.buffer"

	defaultMappingFile  = "mapping.yaml"
	defaultOutputDir    = "releases"
	defaultPackage      = true
	defaultForcePublish = false
	defaultOCDSVersion  = "1.1"

	envPrefix = "OCDSMAP"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".ocdsmap.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	loadEnvFile(filepath.Join(configFolderPath, envFileName))

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		slog.Warn("Failed to read config file", "path", configFileName, "error", err)
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(driverConfigKey, "")
	viper.SetDefault(connectionConfigKey, "")
	viper.SetDefault(mappingFileConfigKey, defaultMappingFile)
	viper.SetDefault(ocidPrefixConfigKey, "")
	viper.SetDefault(selectorConfigKey, "")
	viper.SetDefault(forcePublishConfigKey, defaultForcePublish)
	viper.SetDefault(codelistsConfigKey, []string{})
	viper.SetDefault(codelistFallbackConfigKey, domain.DefaultCodelistFallback)
	viper.SetDefault(slotArraysConfigKey, domain.DefaultSlotArrays)

	viper.SetDefault(publishingConfigKey+".uri", "")
	viper.SetDefault(publishingConfigKey+".version", defaultOCDSVersion)
	viper.SetDefault(publishingConfigKey+".publisher.name", "")
	viper.SetDefault(publishingConfigKey+".publisher.scheme", "")
	viper.SetDefault(publishingConfigKey+".publisher.uid", "")
	viper.SetDefault(publishingConfigKey+".publisher.uri", "")
	viper.SetDefault(publishingConfigKey+".license", "")
	viper.SetDefault(publishingConfigKey+".publication_policy", "")
	viper.SetDefault(publishingConfigKey+".extensions", []string{})

	viper.SetDefault(outputDirConfigKey, defaultOutputDir)
	viper.SetDefault(outputPackageConfigKey, defaultPackage)
	viper.SetDefault(spillDirConfigKey, "")
	viper.SetDefault(metricsFileConfigKey, "")
	viper.SetDefault(runBufferConfigKey, domain.DefaultBuffer)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadEnvFile exports the variables of a .env file without overriding the
// environment. A missing file is not an error.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load env file", "path", path, "error", err)
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
