// Config loading for the kerf CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	configFileName = "kerf"
	configFileType = "yaml"

	// Config keys.
	cfgKeyTolerance     = "tolerance"
	cfgKeyMaxIterations = "max_iterations"
)

// loadConfig reads solver configuration with Viper. The --config flag names
// an explicit file; otherwise .kerf.yaml is searched for in the working
// directory. A missing config file is not an error.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyTolerance, 0.0)
	v.SetDefault(cfgKeyMaxIterations, 0)
	v.SetEnvPrefix("KERF")
	v.AutomaticEnv()

	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.SetConfigName("." + configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && flagConfig == "" {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}
