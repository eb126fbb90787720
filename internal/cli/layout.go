package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/layout"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output     string  // output file path (default: derived from input)
	focal      string  // focal person ID for side separation
	cardWidth  float64 // card width in pixels
	cardHeight float64 // card height in pixels
	vspace     float64 // vertical distance between generations
	sideOffset float64 // horizontal push for maternal/paternal sides
	stdout     bool    // write JSON to stdout instead of a file
}

// newLayoutCmd creates the layout command for computing chart geometry.
// The output is the raw placement JSON, useful for piping into custom
// renderers or inspecting what the engine produced.
func newLayoutCmd() *cobra.Command {
	opts := layoutOpts{
		cardWidth:  layout.DefaultCardWidth,
		cardHeight: layout.DefaultCardHeight,
		vspace:     layout.DefaultVSpace,
		sideOffset: layout.DefaultSideOffset,
	}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute chart geometry for a family snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .layout.json)")
	cmd.Flags().StringVar(&opts.focal, "focal", "", "focal person ID for maternal/paternal side separation")
	cmd.Flags().Float64Var(&opts.cardWidth, "card-width", opts.cardWidth, "card width")
	cmd.Flags().Float64Var(&opts.cardHeight, "card-height", opts.cardHeight, "card height")
	cmd.Flags().Float64Var(&opts.vspace, "vspace", opts.vspace, "vertical distance between generations")
	cmd.Flags().Float64Var(&opts.sideOffset, "side-offset", opts.sideOffset, "horizontal push for side separation")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write JSON to stdout")

	return cmd
}

// runLayout loads the snapshot, runs the engine, and writes the placement JSON.
func runLayout(ctx context.Context, input string, opts *layoutOpts) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	snap, err := kin.ReadSnapshotFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded snapshot: %d people, %d edges", len(snap.People), len(snap.Edges))

	engineOpts := []layout.Option{
		layout.WithCardSize(opts.cardWidth, opts.cardHeight),
		layout.WithVerticalSpacing(opts.vspace, layout.DefaultBaseY),
		layout.WithSideOffset(opts.sideOffset),
		layout.WithLogger(logger),
	}
	if opts.focal != "" {
		engineOpts = append(engineOpts, layout.WithFocal(opts.focal))
	}

	res := layout.Build(snap, engineOpts...)
	if dropped := res.Stats.Dropped(); dropped > 0 {
		printWarning("Dropped %d malformed edges", dropped)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}

	if opts.stdout {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	p.done(fmt.Sprintf("Placed %d people", len(res.Placements)))
	printFile(path)
	printStats(len(res.Placements), res.FamilyGroups, false)
	return nil
}
