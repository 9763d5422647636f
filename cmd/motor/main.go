package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsurely/motor-go/cmd/motor/commands"
	"github.com/nsurely/motor-go/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// shutdownTracing flushes spans exported during the command, if tracing is on.
var shutdownTracing = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "motor",
	Short: "nSurely Motor API CLI",
	Long: `A command-line interface for the nSurely Motor API.

Every command is scoped to one organization. Credentials come from 'motor login',
the MOTOR_* environment variables, or the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := commands.InitTracing(cmd.Context(), viper.GetString("trace-endpoint"), version)
		if err != nil {
			return err
		}

		shutdownTracing = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing(cmd.Context())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.motor/config.yml)")
	rootCmd.PersistentFlags().String("org", "", "organization id")
	rootCmd.PersistentFlags().StringP("region", "r", "", "API region (eu-1, us-1, me-1)")
	rootCmd.PersistentFlags().String("url", "", "API root URL, overrides --region")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every request to stderr")
	rootCmd.PersistentFlags().String("trace-endpoint", "", "OTLP/HTTP endpoint to export request traces to")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("org-id", rootCmd.PersistentFlags().Lookup("org"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("trace-endpoint", rootCmd.PersistentFlags().Lookup("trace-endpoint"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewOrgCommand())
	rootCmd.AddCommand(commands.NewDriversCommand())
	rootCmd.AddCommand(commands.NewVehiclesCommand())
	rootCmd.AddCommand(commands.NewFleetsCommand())
	rootCmd.AddCommand(commands.NewBillingCommand())
	rootCmd.AddCommand(commands.NewPoliciesCommand())
	rootCmd.AddCommand(commands.NewRequestCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := commands.ConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.motor/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// MOTOR_ORG_ID, MOTOR_API_SECRET, ...
	viper.SetEnvPrefix("MOTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
