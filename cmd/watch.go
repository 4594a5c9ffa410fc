package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/backdrop/internal/config"
	"github.com/kiesman99/backdrop/internal/render"
	"github.com/kiesman99/backdrop/internal/scheduler"
	"github.com/kiesman99/backdrop/pkg/tile"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render whenever the config file changes",
	Long: `Render once, then watch the config file and render again after every
change. Bursts of edits are coalesced: a new render starts only after the
file has been quiet for --delay, and a render still running when the file
changes again is abandoned.

Examples:
  # Overwrite wall.png on every save of backdrop.yaml
  backdrop watch --config backdrop.yaml -o wall.png

  # Keep every version, one timestamped file per render
  backdrop watch --config backdrop.yaml --delay 1s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("delay", scheduler.DefaultDelay, "quiet period before re-rendering")
	viper.BindPFlag("watch.delay", watchCmd.Flags().Lookup("delay"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	if viper.ConfigFileUsed() == "" {
		return fmt.Errorf("watch requires a config file (use --config)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rnd, err := newRenderer()
	if err != nil {
		return err
	}
	output := viper.GetString("output")
	if output == "-" {
		return fmt.Errorf("watch writes files, stdout is not supported")
	}

	d := scheduler.NewDebouncer(viper.GetDuration("watch.delay"))
	defer d.Wait()
	defer d.Stop()

	schedule := func(reason string) {
		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			logger.WithError(err).Error("Ignoring invalid configuration")
			return
		}
		logger.WithField("reason", reason).Debug("Render scheduled")
		d.Trigger(func(ctx context.Context) {
			renderAndExport(ctx, cmd, rnd, cfg, output)
		})
	}

	schedule("startup")

	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.WithFields(logrus.Fields{"file": e.Name, "op": e.Op.String()}).Info("Config changed")
		schedule("config changed")
	})
	viper.WatchConfig()

	logger.WithField("file", viper.ConfigFileUsed()).Info("Watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func renderAndExport(ctx context.Context, cmd *cobra.Command, rnd *render.Renderer, cfg tile.LayoutConfig, output string) {
	res, err := rnd.Render(ctx, cfg)
	switch {
	case errors.Is(err, render.ErrSuperseded), errors.Is(err, context.Canceled):
		logger.Debug("Render abandoned for a newer one")
		return
	case err != nil:
		logger.WithError(err).Error("Render failed")
		return
	}

	name := output
	if name == "" {
		name = tile.Filename("", time.Now())
	}
	if err := rnd.ExportFile(name); err != nil {
		logger.WithError(err).Error("Export failed")
		return
	}
	report(cmd, res, name)
}
