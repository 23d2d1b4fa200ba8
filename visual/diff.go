package visual

import (
	"image"
	"image/color"
)

// diff counts differing pixels between two equal-size images and
// renders a diff artifact: the baseline dimmed, differing pixels in
// solid red. A pixel differs when its largest normalised channel delta
// exceeds the threshold.
func diff(baseline, actual image.Image, threshold float64) (int, *image.RGBA) {
	bounds := baseline.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			bp := baseline.At(x, y)
			ax := actual.Bounds().Min.X + (x - bounds.Min.X)
			ay := actual.Bounds().Min.Y + (y - bounds.Min.Y)
			ap := actual.At(ax, ay)

			ox, oy := x-bounds.Min.X, y-bounds.Min.Y
			if pixelDelta(bp, ap) > threshold {
				count++
				out.Set(ox, oy, color.RGBA{R: 255, A: 255})
			} else {
				out.Set(ox, oy, dim(bp))
			}
		}
	}
	return count, out
}

// pixelDelta is the largest per-channel difference, normalised to 0-1.
func pixelDelta(a, b color.Color) float64 {
	ar, ag, ab_, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	max := chanDelta(ar, br)
	if d := chanDelta(ag, bg); d > max {
		max = d
	}
	if d := chanDelta(ab_, bb); d > max {
		max = d
	}
	if d := chanDelta(aa, ba); d > max {
		max = d
	}
	return float64(max) / 65535.0
}

func chanDelta(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// dim renders a washed-out baseline pixel for the diff background.
func dim(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA{
		R: uint8((r>>8)/2 + 128),
		G: uint8((g>>8)/2 + 128),
		B: uint8((b>>8)/2 + 128),
		A: 255,
	}
}
