/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/smarttranslate/internal/config"
	"github.com/valpere/smarttranslate/internal/logging"
)

var version = "0.3.0"

var (
	cfgFile  string
	logLevel string

	v      = config.New()
	cfg    *config.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "smarttranslate",
	Short: "Friendly translation service for Indian languages",
	Long: `smarttranslate translates text into Indian languages, optionally
rewriting the English source in plainer words first, and keeps a per-user
history of saved translations.

Use "smarttranslate serve" to run the HTTP API, or the other commands to work
with the same services from the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./smarttranslate.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	bindFlag(rootCmd, "log.level", "log-level")
}

// bindFlag lets an explicit flag override the config file and environment.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if f := cmd.PersistentFlags().Lookup(flag); f != nil {
		_ = v.BindPFlag(key, f)
		return
	}
	_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
}
