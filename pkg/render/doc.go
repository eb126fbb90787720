// Package render turns computed layouts into visual outputs.
//
// # Overview
//
// Two views are supported:
//
//   - Chart: the family chart itself, drawn directly from the layout
//     geometry as person cards with couple and parent-child connectors.
//   - Node-link: a plain directed graph of the raw kinship edges via
//     Graphviz, useful for debugging data problems before they reach the
//     layout engine.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). They serve both views.
//
//	svg := render.ChartSVG(result, snap)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
//	dot := render.ToDOT(snap)
//	svg, err := render.DOTSVG(dot)
package render
