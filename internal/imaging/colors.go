package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"
)

const (
	dominantColorCount = 5
	sampleGridDivisor  = 50
	// quantizeMask keeps the top 3 bits of each channel (multiples of 32).
	quantizeMask = 0xE0
)

// DominantColors samples img on a regular grid, buckets each channel to a
// multiple of 32 and returns the most frequent buckets as #RRGGBB, most
// frequent first. Ties keep the order in which buckets were first seen.
func DominantColors(img image.Image) []string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return []string{}
	}
	step := max(1, min(w, h)/sampleGridDivisor)

	type bucket struct {
		rgb   uint32
		count int
	}
	index := make(map[uint32]int)
	var buckets []bucket

	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			key := uint32(c.R&quantizeMask)<<16 | uint32(c.G&quantizeMask)<<8 | uint32(c.B&quantizeMask)
			if i, ok := index[key]; ok {
				buckets[i].count++
				continue
			}
			index[key] = len(buckets)
			buckets = append(buckets, bucket{rgb: key, count: 1})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].count > buckets[j].count })

	n := min(dominantColorCount, len(buckets))
	out := make([]string, 0, n)
	for _, bk := range buckets[:n] {
		out = append(out, fmt.Sprintf("#%02X%02X%02X", bk.rgb>>16&0xFF, bk.rgb>>8&0xFF, bk.rgb&0xFF))
	}
	return out
}
