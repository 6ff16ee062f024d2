package config

import (
	"path/filepath"

	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frame-go/cachekit/errors"
)

// BindArgs binds command line arguments to config
func BindArgs(cmd *cobra.Command) {
	viper.AutomaticEnv()

	cmd.PersistentFlags().StringP("config-path", "c", "", "config file path")
	_ = viper.BindPFlag("config_path", cmd.PersistentFlags().Lookup("config-path"))

	cmd.PersistentFlags().BoolP("debug", "d", false, "enable debug mode")
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cmd.PersistentFlags().StringP("log-level", "l", "", "log level: trace, debug, info, warn, error")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.PersistentFlags().BoolP("beautify-log", "b", false, "enable human-friendly, colorized log")
	_ = viper.BindPFlag("beautify_log", cmd.PersistentFlags().Lookup("beautify-log"))

	cmd.PersistentFlags().String("cache-secret", "", "secret used to encrypt cache passwords in config")
	_ = viper.BindPFlag("cache_secret", cmd.PersistentFlags().Lookup("cache-secret"))

	cmd.PersistentFlags().String("cache-provider", "", "cache provider used by registry when several are linked")
	_ = viper.BindPFlag("cache_provider", cmd.PersistentFlags().Lookup("cache-provider"))

	bindApolloArgs(cmd)
}

// InitConfig loads config from config path
func InitConfig() error {
	err := initApolloConfig()
	if err != nil {
		return errors.Wrap(err, "read_config_error").With("source", "apollo")
	}
	configPath := viper.GetString("config_path")
	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType(getConfigType(configPath))
		err = viper.ReadInConfig()
		if err != nil {
			return errors.Wrap(err, "read_config_error").With("config_path", configPath)
		}
	}
	return nil
}

// GetStringMap gets StringMap object by path in config
func GetStringMap(path string) StringMap {
	return viper.GetStringMap(path)
}

// GetStructWithValidation gets Struct object by path in config with validation
func GetStructWithValidation(path string, value interface{}) error {
	err := viper.UnmarshalKey(path, value)
	if err != nil {
		return err
	}
	return validate(value)
}

func validate(value interface{}) error {
	err := validator.New().Struct(value)
	if err != nil {
		return errors.Wrap(err, "config_object_validation_error")
	}
	return nil
}

func getConfigType(name string) string {
	ext := filepath.Ext(name)
	if len(ext) > 1 {
		return ext[1:]
	}
	return ""
}
