// Package cli holds the clockd command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/clockd/internal/config"
	"github.com/sandeepkv93/clockd/internal/logging"
	"github.com/sandeepkv93/clockd/internal/notify"
	"github.com/sandeepkv93/clockd/internal/ringer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

func New() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "clockd",
		Short:        "Alarm clock for the terminal.",
		SilenceUsage: true,
		Example: `
clockd
clockd add 07:30 --label gym --days weekdays
clockd list
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runTUI(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", fmt.Sprintf("YAML config file (default $%s)", config.EnvConfigPath))

	AddCommands(cmd, o)
	return cmd
}

func AddCommands(topLevel *cobra.Command, o *rootOptions) {
	addList(topLevel, o)
	addAdd(topLevel, o)
	addRemove(topLevel, o)
	addNext(topLevel, o)
	addExport(topLevel, o)
	addEnv(topLevel)
	addVersion(topLevel)
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Level, cfg.Format, cfg.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

// withApp opens the stack for a one-shot command. Scheduling confirmations
// are printed to out.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	app, err := OpenApp(o.cfg, o.logger, AppOptions{
		Toaster: notify.WriterToaster{W: cmd.OutOrStdout()},
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(cmd.Context(), app)
}

func (o *rootOptions) runTUI(ctx context.Context) error {
	var player ringer.Player = ringer.NopPlayer{}
	if o.cfg.Sound {
		player = ringer.NewOtoPlayer(o.logger)
	}
	app, err := OpenApp(o.cfg, o.logger, AppOptions{Player: player})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	o.logger.Info("clockd starting", zap.String("db", o.cfg.DBPath), zap.Bool("desktop_notifications", o.cfg.DesktopNotifications))
	return app.RunTUI(ctx)
}

func addEnv(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "env",
		Short:             "List the environment variables clockd reads.",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Usage())
		},
	}
	topLevel.AddCommand(cmd)
}
