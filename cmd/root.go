package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/backdrop/internal/config"
	"github.com/kiesman99/backdrop/internal/render"
	"github.com/kiesman99/backdrop/pkg/tile"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=..."
var version = "1.0.0"

var (
	cfgFile   string
	logger    *logrus.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backdrop",
	Short: "Tile image silhouettes into an embossed 2560x1440 background",
	Long: `backdrop turns a set of images into a tiled wallpaper.

Each image is reduced to a silhouette in a tint derived from the background
color, optionally embossed, and repeated across a grid. Density controls how
many cells are filled, and every other row can be shifted sideways.

Examples:
  # Render three images on the default sage background
  backdrop -i cat.png -i dog.png -i https://example.com/bird.png -o wall.png

  # Dense 9x9 grid with a stronger emboss lit from the top left
  backdrop -i logo.png --grid 9 --emboss-intensity 60 --emboss-direction 315

  # Use a built-in palette and a fixed layout seed
  backdrop -i logo.png --palette "ocean teal" --seed 42

  # Re-render whenever the config file changes
  backdrop watch --config backdrop.yaml -o wall.png

  # Start HTTP server
  backdrop serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, closer, err := config.NewLogger(config.LogOptionsFromViper(viper.GetViper()))
		if err != nil {
			return err
		}
		logger, logCloser = log, closer
		if f := viper.ConfigFileUsed(); f != "" {
			logger.WithField("file", f).Debug("Using config file")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: runRender,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	d := tile.DefaultLayout()
	pf := rootCmd.PersistentFlags()

	// Global flags
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.backdrop.yaml)")
	pf.String(config.KeyLogLevel, "info", "log level (debug|info|warn|error)")
	pf.String(config.KeyLogFormat, "text", "log format (text|json)")
	pf.String(config.KeyLogFile, "", "write logs to a rotated file instead of stderr")
	pf.String(config.KeyUserAgent, tile.DefaultUserAgent, "HTTP User-Agent header for remote images")

	// Layout
	pf.StringSliceP(config.KeyImages, "i", nil, "source image path or URL (repeatable)")
	pf.StringP(config.KeyBackground, "b", d.BackgroundColor, "background color (hex, rgb() or hsl())")
	pf.String(config.KeyPalette, "", "named background preset, overrides --background")
	pf.Int(config.KeyGrid, d.GridSize, "rows and columns of the grid")
	pf.Float64(config.KeyDensity, d.Density, "percent of cells that receive a tile (0-100)")
	pf.Float64(config.KeyScale, d.TilePixelScale, "longest side of a tile in pixels")
	pf.Float64(config.KeySpacing, d.Spacing, "tile spacing (kept for compatibility, no effect)")
	pf.Float64(config.KeyRowOffset, d.RowOffsetPercent, "horizontal shift of odd rows in percent of a cell")
	pf.Float64(config.KeyEmbossIntensity, d.EmbossIntensity, "emboss strength (0-100)")
	pf.Float64(config.KeyEmbossDirection, d.EmbossDirection, "light direction in degrees")
	pf.Float64(config.KeyEmbossDepth, d.EmbossDepth, "emboss neighbor radius (0-10)")
	pf.Uint64(config.KeySeed, 0, "seed for a reproducible layout")

	// Output options
	pf.StringP("output", "o", "", "output file, - for stdout (default: tiled-background-<timestamp>.png)")
	rootCmd.Flags().String("preview", "", "also write the preview buffer to this file")

	for _, name := range []string{
		config.KeyLogLevel, config.KeyLogFormat, config.KeyLogFile, config.KeyUserAgent,
		config.KeyImages, config.KeyBackground, config.KeyPalette, config.KeyGrid,
		config.KeyDensity, config.KeyScale, config.KeySpacing, config.KeyRowOffset,
		config.KeyEmbossIntensity, config.KeyEmbossDirection, config.KeyEmbossDepth,
		config.KeySeed, "output",
	} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
	viper.BindPFlag("preview", rootCmd.Flags().Lookup("preview"))
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".backdrop" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".backdrop")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Warning: unable to read config file:", err)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if len(cfg.ImageURLs) == 0 && viper.ConfigFileUsed() == "" {
		return cmd.Help()
	}

	rnd, err := newRenderer()
	if err != nil {
		return err
	}

	res, err := rnd.Render(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if p := viper.GetString("preview"); p != "" {
		if err := tile.WritePNG(p, rnd.Preview()); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
	}

	output := viper.GetString("output")
	switch output {
	case "-":
		err = rnd.Export(cmd.OutOrStdout())
	case "":
		output = tile.Filename("", time.Now())
		fallthrough
	default:
		err = rnd.ExportFile(output)
	}
	if errors.Is(err, render.ErrEmptyExport) {
		return fmt.Errorf("%w: load at least one image or pick a background", err)
	}
	if err != nil {
		return err
	}

	report(cmd, res, output)
	return nil
}

func newRenderer() (*render.Renderer, error) {
	return render.New(render.Options{
		Source: tile.NewProcessor(viper.GetString(config.KeyUserAgent), nil),
		Logger: logger,
		Seed:   config.Seed(viper.GetViper()),
	})
}

func report(cmd *cobra.Command, res *render.Result, output string) {
	if output == "-" {
		output = "stdout"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Placed %d of %d tiles from %d images (%d failed) on %s, tint %s -> %s\n",
		res.Stats.Filled, res.Stats.Cells, res.Loaded, res.Failed(), res.Background, res.Tint, output)
}
