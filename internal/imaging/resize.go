package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Fit returns the largest size with the same aspect ratio as w x h whose
// long edge is at most maxEdge. Images already inside the box keep their size.
func Fit(w, h, maxEdge int) (int, int) {
	if w <= 0 || h <= 0 || maxEdge <= 0 {
		return w, h
	}
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) * float64(maxEdge) / float64(w)))
		return maxEdge, max(1, nh)
	}
	nw := int(math.Round(float64(w) * float64(maxEdge) / float64(h)))
	return max(1, nw), maxEdge
}

// Resize scales img to exactly w x h. The source is returned as is when it
// already has that size.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
