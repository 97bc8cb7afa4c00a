package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/matflow/internal/render"
)

// FrameToSVG converts a recorded frame to SVG. Glows become circles blurred
// with a Gaussian filter whose deviation is half the blur radius.
func FrameToSVG(rec *render.Recorder, background string) string {
	if rec == nil {
		return ""
	}
	w, h := rec.Size()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, w, h, w, h))
	if background != "" {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, background))
	}

	filters := make(map[float64]string)
	var blurs []float64
	var body strings.Builder
	for _, c := range rec.Commands() {
		switch c.Shape {
		case render.ShapeGlow:
			id, ok := filters[c.Blur]
			if !ok {
				id = fmt.Sprintf("glow%d", len(filters))
				filters[c.Blur] = id
				blurs = append(blurs, c.Blur)
			}
			body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" %s filter="url(#%s)"/>
`, c.X, c.Y, c.R, fill(c.Color), id))
		case render.ShapeCircle:
			body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" %s/>
`, c.X, c.Y, c.R, fill(c.Color)))
		}
	}

	if len(filters) > 0 {
		sb.WriteString("<defs>\n")
		for _, blur := range blurs {
			sb.WriteString(fmt.Sprintf(`<filter id="%s" x="-300%%" y="-300%%" width="700%%" height="700%%"><feGaussianBlur stdDeviation="%.1f"/></filter>
`, filters[blur], blur/2))
		}
		sb.WriteString("</defs>\n")
	}
	sb.WriteString(body.String())
	sb.WriteString("</svg>")
	return sb.String()
}

func fill(c color.RGBA) string {
	return fmt.Sprintf(`fill="rgb(%d,%d,%d)" fill-opacity="%.2f"`, c.R, c.G, c.B, float64(c.A)/255)
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
