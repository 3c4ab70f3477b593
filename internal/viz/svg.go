package viz

import (
	"fmt"
	"strings"
)

// SVG renders the canvas dots as circles, scale pixels per dot.
func (c *Canvas) SVG(scale float64) string {
	width := float64(c.Width) * scale * 2
	height := float64(c.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ccff">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
