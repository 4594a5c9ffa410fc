package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/backdrop/internal/config"
	"github.com/kiesman99/backdrop/internal/palette"
	"github.com/kiesman99/backdrop/internal/render"
	"github.com/kiesman99/backdrop/pkg/tile"
)

var palettesCmd = &cobra.Command{
	Use:   "palettes",
	Short: "List background presets or suggest colors from images",
}

var palettesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in background presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCOLOR\tTINT\tDESCRIPTION")
		for _, p := range palette.Presets() {
			bg, _ := tile.ParseColor(p.Color)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Color, tile.DeriveTint(bg), p.Description)
		}
		return tw.Flush()
	},
}

var palettesSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest background colors from the given images",
	Long: `Sample the opaque pixels of the --image sources and propose a palette
plus a light background that keeps the derived tint readable.

Examples:
  backdrop palettes suggest -i logo.png -i icon.png --count 6
  backdrop palettes suggest -i https://example.com/a.png --method kmeans`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(palettesCmd)
	palettesCmd.AddCommand(palettesListCmd)
	palettesCmd.AddCommand(palettesSuggestCmd)

	palettesSuggestCmd.Flags().Int("count", 5, "number of colors to suggest")
	palettesSuggestCmd.Flags().String("method", "dominantcolor", "extraction method (dominantcolor|kmeans)")
	viper.BindPFlag("suggest.count", palettesSuggestCmd.Flags().Lookup("count"))
	viper.BindPFlag("suggest.method", palettesSuggestCmd.Flags().Lookup("method"))
}

func runSuggest(cmd *cobra.Command, args []string) error {
	method, err := palette.ParseMethod(viper.GetString("suggest.method"))
	if err != nil {
		return err
	}

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if len(cfg.ImageURLs) == 0 {
		return fmt.Errorf("at least one image is required (use --image)")
	}

	cache, err := render.NewCache(render.DefaultCacheBytes)
	if err != nil {
		return err
	}
	defer cache.Close()

	src := tile.NewProcessor(viper.GetString(config.KeyUserAgent), nil)
	loaded, errs := cache.LoadAll(cmd.Context(), src, cfg.ImageURLs, 0)

	var sources []*tile.SourceImage
	for i, img := range loaded {
		if errs[i] != nil {
			logger.WithError(errs[i]).WithField("url", cfg.ImageURLs[i]).Warn("Skipping source image")
			continue
		}
		sources = append(sources, img)
	}

	s, err := palette.Suggest(sources, viper.GetInt("suggest.count"), method)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLOR\tWEIGHT")
	for _, sw := range s.Swatches {
		fmt.Fprintf(tw, "%s\t%.3f\n", sw.Color, sw.Weight)
	}
	fmt.Fprintf(tw, "\nbackground\t%s\n", s.Background)
	fmt.Fprintf(tw, "tint\t%s\n", tile.DeriveTint(s.Background))
	return tw.Flush()
}
