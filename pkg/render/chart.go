package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/layout"
)

// chartPadding is the margin around the outermost cards.
const chartPadding = 40.0

// ChartOption configures chart rendering.
type ChartOption func(*chartRenderer)

type chartRenderer struct {
	focalID  string
	detailed bool
}

// WithFocalHighlight tints the focal person's card.
func WithFocalHighlight(id string) ChartOption {
	return func(r *chartRenderer) { r.focalID = id }
}

// WithDetails adds lifespan lines below the person names.
func WithDetails() ChartOption {
	return func(r *chartRenderer) { r.detailed = true }
}

// ChartSVG renders a computed layout as an SVG family chart. Cards are drawn
// per placement; couple links join anchors to their attached partners;
// parent-child connectors drop from the parent card (or the midpoint of a
// parent couple) to each child.
func ChartSVG(res layout.Result, snap kin.Snapshot, opts ...ChartOption) []byte {
	var r chartRenderer
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := res.Bounds()
	width := maxX - minX + 2*chartPadding
	height := maxY - minY + 2*chartPadding
	if len(res.Placements) == 0 {
		width, height = 2*chartPadding, 2*chartPadding
	}

	// Shift layout coordinates into the padded viewport.
	tx := func(x float64) float64 { return x - minX + chartPadding }
	ty := func(y float64) float64 { return y - minY + chartPadding }

	byID := make(map[string]layout.Placement, len(res.Placements))
	for _, p := range res.Placements {
		byID[p.ID] = p
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(chartDefs)

	// Connectors first so cards draw over them.
	renderCoupleLinks(&buf, res, byID, tx, ty)
	renderChildLinks(&buf, res, byID, tx, ty)

	for _, p := range res.Placements {
		renderCard(&buf, &r, res, snap, p, tx, ty)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

const chartDefs = `  <style>
    .card { fill: white; stroke: #444; stroke-width: 1.5; }
    .card.focal { fill: #fff3d6; stroke-width: 2.5; }
    .card-name { font: 13px sans-serif; text-anchor: middle; }
    .card-life { font: 10px sans-serif; text-anchor: middle; fill: #777; }
    .link { stroke: #999; stroke-width: 1.5; fill: none; }
    .link.couple { stroke: #c66; stroke-width: 2; }
  </style>
`

// renderCoupleLinks draws a horizontal bar between each attached partner and
// its anchor.
func renderCoupleLinks(buf *bytes.Buffer, res layout.Result, byID map[string]layout.Placement, tx, ty func(float64) float64) {
	for _, p := range res.Placements {
		if !p.AttachedPartner || p.AnchorID == "" {
			continue
		}
		anchor, ok := byID[p.AnchorID]
		if !ok {
			continue
		}
		fmt.Fprintf(buf, `  <line class="link couple" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			tx(anchor.X), ty(anchor.Y), tx(p.X), ty(p.Y))
	}
}

// renderChildLinks draws an elbow from each child's parent attachment point
// down to the child card. With two placed parents the elbow starts at the
// midpoint between them.
func renderChildLinks(buf *bytes.Buffer, res layout.Result, byID map[string]layout.Placement, tx, ty func(float64) float64) {
	for _, child := range res.Placements {
		var px, py []float64
		for _, pid := range child.Parents {
			if parent, ok := byID[pid]; ok {
				px = append(px, parent.X)
				py = append(py, parent.Y)
			}
		}
		if len(px) == 0 {
			continue
		}

		fromX, fromY := px[0], py[0]
		for i := 1; i < len(px); i++ {
			fromX += px[i]
			fromY += py[i]
		}
		fromX /= float64(len(px))
		fromY /= float64(len(py))

		top := ty(child.Y) - res.CardHeight/2
		bottom := ty(fromY) + res.CardHeight/2
		midY := (top + bottom) / 2

		fmt.Fprintf(buf, `  <path class="link" d="M %.1f %.1f V %.1f H %.1f V %.1f"/>`+"\n",
			tx(fromX), bottom, midY, tx(child.X), top)
	}
}

func renderCard(buf *bytes.Buffer, r *chartRenderer, res layout.Result, snap kin.Snapshot, p layout.Placement, tx, ty func(float64) float64) {
	left := tx(p.X) - res.CardWidth/2
	top := ty(p.Y) - res.CardHeight/2

	class := "card"
	if p.ID == r.focalID {
		class = "card focal"
	}
	fmt.Fprintf(buf, `  <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
		class, left, top, res.CardWidth, res.CardHeight)

	name := p.ID
	life := ""
	if person, ok := snap.Person(p.ID); ok {
		name = person.DisplayName()
		life = person.Lifespan()
	}

	nameY := ty(p.Y) + 4
	if r.detailed && life != "" {
		nameY = ty(p.Y) - 3
	}
	fmt.Fprintf(buf, `  <text class="card-name" x="%.1f" y="%.1f">%s</text>`+"\n",
		tx(p.X), nameY, escapeXML(name))
	if r.detailed && life != "" {
		fmt.Fprintf(buf, `  <text class="card-life" x="%.1f" y="%.1f">%s</text>`+"\n",
			tx(p.X), ty(p.Y)+13, escapeXML(life))
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
