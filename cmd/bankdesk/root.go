package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bankdesk/internal/api"
	"bankdesk/internal/config"
	"bankdesk/internal/customer"
	"bankdesk/internal/session"
	"bankdesk/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit

var rootCmd = &cobra.Command{
	Use:   "bankdesk",
	Short: "Admin console for the retail banking API",
	Long: `bankdesk is a headless admin console for the retail banking API.
It keeps an operator session and one selected customer synchronized with the
backend, from the command line or through a local HTTP gateway (see "serve").`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("api-url", "", "banking API base URL")
	rootCmd.PersistentFlags().String("state-path", "", "path to the local state database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	viper.BindPFlag("api_base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("state_path", rootCmd.PersistentFlags().Lookup("state-path"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetEnvPrefix("BANKDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// app bundles the wired console core for command handlers.
type app struct {
	cfg       *config.Config
	store     *store.Store
	client    *api.Client
	sessions  *session.Controller
	workspace *customer.Controller
	logger    *slog.Logger
}

// newApp wires config, store, API client, and the two controllers, then
// rehydrates any persisted session.
func newApp() (*app, error) {
	cfg := config.Load()
	if v := viper.GetString("api_base_url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := viper.GetString("state_path"); v != "" {
		cfg.State.Path = v
	}

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	st, err := store.Open(&cfg.State)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	registry := prometheus.DefaultRegisterer
	client := api.NewClient(&cfg.API, st, api.NewMetrics(registry), logger)
	sessions := session.NewController(client, st, logger)
	workspace := customer.NewController(client, st, sessions, customer.NewMetrics(registry), logger)

	if err := sessions.Rehydrate(); err != nil {
		logger.Warn("failed to rehydrate session", "error", err)
	}

	return &app{
		cfg:       cfg,
		store:     st,
		client:    client,
		sessions:  sessions,
		workspace: workspace,
		logger:    logger,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close state store", "error", err)
	}
}

// requireSession guards commands that need an authenticated operator.
func (a *app) requireSession() error {
	if !a.sessions.IsAuthenticated() {
		return fmt.Errorf("not signed in; run \"bankdesk login\" first")
	}
	return nil
}
