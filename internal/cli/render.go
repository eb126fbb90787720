package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats)
	snapshot   string   // load from the snapshot store instead of a file
	view       string   // visualization view: "chart" or "nodelink"
	formats    []string // output formats: "svg", "png", "pdf", "dot", "json"
	focal      string   // focal person ID
	pick       bool     // pick the focal person interactively
	detailed   bool     // show lifespan details on cards
	cardWidth  float64  // card width in pixels
	cardHeight float64  // card height in pixels
	vspace     float64  // vertical distance between generations
	sideOffset float64  // horizontal push for side separation
	scale      float64  // PNG scale factor
	refresh    bool     // bypass the cache
}

// newRenderCmd creates the render command for generating chart visualizations.
// It supports two views (chart, nodelink) and multiple output formats.
//
// The input is either a snapshot file or, with --name, a snapshot from the
// store. Results go through the shared pipeline so repeated renders of the
// same data hit the cache.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		view:  pipeline.ViewChart,
		scale: pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a family snapshot to SVG(s)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateView(opts.view); err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}

			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && opts.snapshot == "" {
				return fmt.Errorf("provide a snapshot file or --name")
			}
			return runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.snapshot, "name", "", "render a stored snapshot instead of a file")
	cmd.Flags().StringVarP(&opts.view, "view", "t", opts.view, "visualization view: chart (default), nodelink")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.focal, "focal", "", "focal person ID for side separation and highlighting")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the focal person interactively")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show lifespan details on cards")
	cmd.Flags().Float64Var(&opts.cardWidth, "card-width", 0, "card width (default: engine default)")
	cmd.Flags().Float64Var(&opts.cardHeight, "card-height", 0, "card height (default: engine default)")
	cmd.Flags().Float64Var(&opts.vspace, "vspace", 0, "vertical distance between generations")
	cmd.Flags().Float64Var(&opts.sideOffset, "side-offset", 0, "horizontal push for side separation")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that
// extension. This is used when generating multiple files.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the snapshot, executes the pipeline, and writes artifacts.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	snap, base, err := loadRenderInput(ctx, input, opts)
	if err != nil {
		return err
	}
	logger.Infof("Loaded snapshot: %d people, %d edges", len(snap.People), len(snap.Edges))

	if opts.pick {
		focal, err := pickFocalPerson(snap)
		if err != nil {
			return err
		}
		if focal == "" {
			printInfo("No focal person selected")
		}
		opts.focal = focal
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, "Rendering chart")
	spin.Start()
	result, err := runner.Execute(ctx, snap, pipeline.Options{
		FocalID:    opts.focal,
		CardWidth:  opts.cardWidth,
		CardHeight: opts.cardHeight,
		VSpace:     opts.vspace,
		SideOffset: opts.sideOffset,
		View:       opts.view,
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		PNGScale:   opts.scale,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	spin.Stop()
	if err != nil {
		return err
	}

	if result.Stats.DroppedEdges > 0 {
		printWarning("Dropped %d malformed edges", result.Stats.DroppedEdges)
	}

	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = fmt.Sprintf("%s.%s", basePath(opts.output, base), format)
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Rendered %s view", opts.view)
	printStats(result.Stats.PeopleCount, result.Layout.FamilyGroups,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// loadRenderInput loads the snapshot from a file or from the store, and
// returns it together with the base name used for output paths.
func loadRenderInput(ctx context.Context, input string, opts *renderOpts) (kin.Snapshot, string, error) {
	if opts.snapshot == "" {
		snap, err := kin.ReadSnapshotFile(input)
		return snap, input, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return kin.Snapshot{}, "", err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return kin.Snapshot{}, "", err
	}
	defer st.Close(ctx)

	snap, _, err := st.Load(ctx, opts.snapshot)
	return snap, opts.snapshot + ".json", err
}
