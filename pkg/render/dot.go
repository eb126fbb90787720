package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// ToDOT converts a snapshot to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered with [DOTSVG].
//
// Parent edges are drawn directed, spouse and sibling edges undirected.
// Invalid edges (unknown endpoints, self-references) are skipped, matching
// what the layout engine would drop.
func ToDOT(snap kin.Snapshot) string {
	known := make(map[string]bool, len(snap.People))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range snap.Sorted().People {
		known[p.ID] = true
		label := p.DisplayName()
		if life := p.Lifespan(); life != "" {
			label += "\n" + life
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", p.ID, label)
	}

	buf.WriteString("\n")
	for _, e := range snap.Sorted().Edges {
		if !known[e.PersonA] || !known[e.PersonB] || e.PersonA == e.PersonB {
			continue
		}
		switch e.Kind {
		case kin.KindParent:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.PersonA, e.PersonB)
		case kin.KindChild:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.PersonB, e.PersonA)
		case kin.KindSpouse:
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, color=\"#c66666\", constraint=false];\n", e.PersonA, e.PersonB)
		case kin.KindSibling:
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", e.PersonA, e.PersonB)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// DOTSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func DOTSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
