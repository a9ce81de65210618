package main

import (
	"encoding/json"
	"os"

	"multicurrency/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// @title Multi-currency rates API
// @version 1.0
// @description Exchange rates, conversion and foreign-currency payments against a configurable base currency.
// @BasePath /api/v1
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "multicurrency",
		Short:         "Exchange rate engine with multi-currency payments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the yaml config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the update scheduler",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(configPath)
			},
		},
		&cobra.Command{
			Use:   "update [CODE]",
			Short: "Run one rate update cycle and print its report",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var scope string
				if len(args) == 1 {
					scope = args[0]
				}
				res, err := app.RunUpdateOnce(configPath, scope)
				if res.ExecID != "" {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(res); encErr != nil {
						return encErr
					}
				}
				if err != nil {
					logrus.WithError(err).Error("Rate update failed")
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.RunMigrations(configPath); err != nil {
					logrus.WithError(err).Error("Migrations failed")
					return err
				}
				return nil
			},
		},
	)
	return root
}

func serve(configPath string) error {
	if err := app.Run(configPath); err != nil {
		logrus.WithError(err).Error("Application stopped with error")
		return err
	}
	return nil
}
