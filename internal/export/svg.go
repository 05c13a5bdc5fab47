package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
	"github.com/san-kum/stickbox/internal/viz"
)

const (
	background  = "#000000"
	stickColor  = "#808080"
	pointColor  = "#ffffff"
	trailColor  = "#00ff88"
	stickStroke = 2.0
)

// PrimitivesToSVG draws a frame in world units: sticks as gray lines and
// points as white discs on black. Trails, if any, are drawn underneath.
func PrimitivesToSVG(prims []sim.Primitive, bounds physics.Bounds, trails ...[]mgl64.Vec2) string {
	w, h := bounds.Width(), bounds.Height()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.2f %.2f %.2f %.2f">
<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, w, h, bounds.MinX, bounds.MinY, w, h, bounds.MinX, bounds.MinY, w, h, background)

	for _, trail := range trails {
		if d := pathData(trail); d != "" {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.6" d="%s"/>
`, trailColor, d)
		}
	}

	fmt.Fprintf(&sb, `<g stroke="%s" stroke-width="%.1f">
`, stickColor, stickStroke)
	for _, p := range prims {
		if p.Kind == sim.Segment {
			fmt.Fprintf(&sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>
`, p.A[0], p.A[1], p.B[0], p.B[1])
		}
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, `<g fill="%s">
`, pointColor)
	for _, p := range prims {
		if p.Kind == sim.Disc {
			fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f"/>
`, p.A[0], p.A[1], p.Radius)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func pathData(points []mgl64.Vec2) string {
	if len(points) < 2 {
		return ""
	}
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&sb, "M%.2f,%.2f", p[0], p[1])
		} else {
			fmt.Fprintf(&sb, " L%.2f,%.2f", p[0], p[1])
		}
	}
	return sb.String()
}

// Trails splits recorded snapshots into one path per point.
func Trails(states []sim.State) [][]mgl64.Vec2 {
	if len(states) == 0 {
		return nil
	}
	trails := make([][]mgl64.Vec2, states[0].NumPoints())
	for _, s := range states {
		for i := range trails {
			if i < s.NumPoints() {
				trails[i] = append(trails[i], s.Point(i))
			}
		}
	}
	return trails
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
