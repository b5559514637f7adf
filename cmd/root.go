package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/International-Combat-Archery-Alliance/event-checkin/config"
	"github.com/International-Combat-Archery-Alliance/event-checkin/confirm"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what the subcommands share once the root command has loaded config.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
	in      io.Reader

	// Replaced in tests.
	openRepo  func(ctx context.Context) (events.Repository, error)
	ssmClient func(ctx context.Context) (config.ParameterGetter, error)
}

func newApp(in io.Reader) *app {
	a := &app{
		v:  config.NewViper(),
		in: in,
	}
	a.openRepo = a.openDynamoRepo
	a.ssmClient = a.newSSMClient
	return a
}

func (a *app) rootCmd(out io.Writer, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "checkin",
		Short: "Issue event tickets and check registrants in at the door",
		Long: `checkin runs the event check-in service and the admin tooling around it.

Configuration is read from the file given with --config (or CHECKIN_CONFIG_FILE)
and from CHECKIN_ prefixed environment variables, e.g. CHECKIN_DYNAMO_TABLE_NAME.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(errOut)
		},
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (can also use CHECKIN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	a.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newServeCmd(a),
		newTokenCmd(),
		newValidateCmd(),
		newEventCmd(a),
		newVenueCmd(a),
		newAreaCmd(a),
	)

	return rootCmd
}

func (a *app) loadConfig(errOut io.Writer) error {
	cfgFile := a.cfgFile
	if cfgFile == "" {
		cfgFile = os.Getenv("CHECKIN_CONFIG_FILE")
	}

	if err := config.ReadFile(a.v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(errOut, cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	return nil
}

// newLogger logs JSON in prod and text everywhere else.
func newLogger(w io.Writer, env string, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(env, config.EnvProd) {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (a *app) loadCatalog(ctx context.Context) (confirm.Catalog, error) {
	var getter config.ParameterGetter
	if a.cfg.Catalog.SSMParameter != "" {
		var err error
		getter, err = a.ssmClient(ctx)
		if err != nil {
			return confirm.Catalog{}, err
		}
	}

	return config.LoadCatalog(ctx, a.cfg.Catalog, getter)
}
