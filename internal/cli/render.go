package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/testutil"
	"github.com/scvi-aria/deko/internal/vendor"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Vendor     string
	VendorFile string
	Stage      string
	Elapsed    time.Duration
	Order      string
	Items      []string
	Website    string
	Width      float64
	Height     float64
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print one frame's display list",
		Long: `Render a single frame headlessly and print its display list.

The engine is walked to --stage on a manual clock with a sample order, then
drawn --elapsed into that stage. Use --format json for the full shape list.

Examples:
  deko render --vendor pizza --stage PREPARING --elapsed 2500ms
  deko render --vendor-file ./vendor.cue --stage IDLE --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Vendor, "vendor", "", "vendor key (overrides the vendor file)")
	cmd.Flags().StringVar(&opts.VendorFile, "vendor-file", "", "CUE vendor configuration file or directory")
	cmd.Flags().StringVar(&opts.Stage, "stage", "RECEIVED", "stage to render")
	cmd.Flags().DurationVar(&opts.Elapsed, "elapsed", 0, "time into the stage")
	cmd.Flags().StringVar(&opts.Order, "order", "001", "sample order number")
	cmd.Flags().StringSliceVar(&opts.Items, "items", []string{"Latte"}, "sample order items")
	cmd.Flags().StringVar(&opts.Website, "website", "", "website URL for the idle QR code (overrides the vendor file)")
	cmd.Flags().Float64Var(&opts.Width, "width", domain.DefaultSize.Width, "surface width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", domain.DefaultSize.Height, "surface height in pixels")

	return cmd
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	stage, err := domain.ParseStage(strings.ToUpper(opts.Stage))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --stage", err)
	}
	if opts.Elapsed < 0 {
		return NewExitError(ExitCommandError, "--elapsed must not be negative")
	}

	cfg := vendor.Default()
	if opts.VendorFile != "" {
		if cfg, err = vendor.LoadFile(opts.VendorFile); err != nil {
			return WrapExitError(ExitCommandError, "failed to load vendor configuration", err)
		}
	}
	if opts.Vendor != "" {
		cfg.VendorType = opts.Vendor
	}
	if opts.Website != "" {
		cfg.WebsiteURL = opts.Website
	}

	size := domain.Size{Width: opts.Width, Height: opts.Height}
	order := domain.Order{Number: opts.Order, Items: opts.Items}
	frame, err := RenderFrame(cfg, size, stage, opts.Elapsed, order)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, frame, nil)
	}
	fmt.Fprintf(w, "%s (%s)\n", cfg.Template().Name(), cfg.VendorType)
	return frame.Describe(w)
}

// RenderFrame draws the frame a display configured by cfg shows elapsed into
// stage, with order in flight for every stage but IDLE.
func RenderFrame(cfg vendor.Config, size domain.Size, stage domain.Stage, elapsed time.Duration, order domain.Order) (canvas.Frame, error) {
	clock := testutil.NewManualClock()
	eng, err := engine.New(cfg.Template(), canvas.NewRecorder(),
		engine.WithClock(clock),
		engine.WithSize(size),
		engine.WithBranding(cfg.Branding()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return canvas.Frame{}, err
	}
	defer eng.Destroy()

	if stage != domain.StageIdle {
		eng.RunOrder(order)
		stages := eng.Template().Stages()
		var at time.Duration
		for _, s := range domain.Sequence {
			if s == stage {
				break
			}
			at += stages.Get(s).Duration
			eng.Tick(clock.Set(at))
		}
	}
	if eng.State() != stage {
		return canvas.Frame{}, fmt.Errorf("engine reached %s, not %s", eng.State(), stage)
	}
	return eng.Render(clock.Now().Add(elapsed)), nil
}
