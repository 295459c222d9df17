package cli

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/soypat/figure3d/internal/config"
	"github.com/soypat/figure3d/softgl"
)

func newRenderCommand(opts *Options) *cobra.Command {
	var (
		output        string
		width, height int
		sky           string
		model         string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the scene to a PNG file with the software renderer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())
			sc, err := loadScene(opts)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("output") {
				sc.Output.Path = output
			}
			if flags.Changed("width") {
				sc.Output.Width = width
			}
			if flags.Changed("height") {
				sc.Output.Height = height
			}
			if flags.Changed("sky") {
				sc.Sky = config.Sky{Kind: config.SkyPreset, Preset: sky}
			}
			if flags.Changed("model") {
				sc.Model = model
			}
			if err := sc.Validate(); err != nil {
				return err
			}
			if sc.Output.Path == "" {
				return errors.New("render: no output path")
			}
			start := time.Now()
			img, err := renderImage(sc, logger)
			if err != nil {
				return err
			}
			if err := fauxgl.SavePNG(sc.Output.Path, img); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			logger.Info("frame rendered",
				slog.String("path", sc.Output.Path),
				slog.Int("width", sc.Output.Width),
				slog.Int("height", sc.Output.Height),
				slog.Duration("elapsed", time.Since(start)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path")
	cmd.Flags().IntVar(&width, "width", 0, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Image height in pixels")
	cmd.Flags().StringVar(&sky, "sky", "", "Built-in sky preset name (see skies)")
	cmd.Flags().StringVar(&model, "model", "", "Binary STL model path")
	return cmd
}

// renderImage draws one frame of sc in software. With supersampling the
// frame is drawn larger and downsampled, which antialiases edges.
func renderImage(sc *config.Scene, log *slog.Logger) (image.Image, error) {
	fig, err := buildFigure(sc, log)
	if err != nil {
		return nil, err
	}
	ss := max(1, sc.Output.Supersample)
	w, h := sc.Output.Width*ss, sc.Output.Height*ss
	ctx := softgl.NewContext(w, h)
	cache, err := newCache(ctx, sc.Textures, log)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	if err := fig.RenderFrame(ctx, cache, float64(w)/float64(h)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	img := ctx.Image()
	if ss > 1 {
		img = resize.Resize(uint(sc.Output.Width), uint(sc.Output.Height), img, resize.Bilinear)
	}
	return img, nil
}
