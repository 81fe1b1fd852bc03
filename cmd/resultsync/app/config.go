package app

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/resultsync"
	"github.com/agentstation/resultsync/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "RESULTSYNC"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is the file actually read, empty when none was found.
	ConfigFile string

	// Sync is handed to resultsync.New.
	Sync resultsync.Config

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// remoteKeys are bound explicitly so send_to_remote can come from the
// environment alone.
var remoteKeys = []string{"login", "password", "host", "port", "archive", "remote_dir", "known_hosts", "insecure_ignore_host_key"}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (RESULTSYNC_*)
//  3. .env files
//  4. Config file (configFile, or resultsync.{yaml,toml,json} in the working
//     directory or $HOME/.config/resultsync)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range remoteKeys {
		if err := v.BindEnv("send_to_remote." + key); err != nil {
			return nil, errors.NewConfigError("send_to_remote", "cannot bind "+key, err)
		}
	}

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("resultsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "resultsync"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		LogOutput:  v.GetString("log_output"),
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&config.Sync, hook); err != nil {
		return nil, errors.NewConfigError("config", "cannot decode configuration", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	d := resultsync.DefaultConfig()
	v.SetDefault("local_dir", d.LocalDir)
	v.SetDefault("remote_dir", d.RemoteDir)
	v.SetDefault("archive_dir", d.ArchiveDir)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("results_file", "")
	v.SetDefault("use_remote_results", false)
	v.SetDefault("publish_timeout", d.PublishTimeout)
	v.SetDefault("absorb_conflict", d.AbsorbConflict)
	v.SetDefault("merge_strategy", d.MergeStrategy)
	v.SetDefault("commands_url", d.CommandsURL)
	v.SetDefault("commands_auth", "")
	v.SetDefault("commands_token", "")

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is read after .env; godotenv never overrides a variable that
// is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook reads bare numbers given for a duration, such as
// publish_timeout: 180, as seconds. Strings with a unit ("3m") are left to
// the standard duration hook.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	case reflect.String:
		if n, err := strconv.ParseFloat(strings.TrimSpace(data.(string)), 64); err == nil {
			return time.Duration(n * float64(time.Second)), nil
		}
	}
	return data, nil
}
