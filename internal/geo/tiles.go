package geo

import (
	"fmt"
	"math"

	geom "github.com/twpayne/go-geom"
)

// Subdivide splits a bounding box into tiles no larger than maxSpan degrees
// per axis so each downstream spatial query stays inside its element and
// timeout budget.
func Subdivide(b *geom.Bounds, maxSpan float64) []Area {
	south, west := b.Min(1), b.Min(0)
	north, east := b.Max(1), b.Max(0)

	latSpan := north - south
	lonSpan := east - west

	latSteps := int(math.Ceil(latSpan / maxSpan))
	if latSteps < 1 {
		latSteps = 1
	}
	lonSteps := int(math.Ceil(lonSpan / maxSpan))
	if lonSteps < 1 {
		lonSteps = 1
	}

	latStep := latSpan / float64(latSteps)
	lonStep := lonSpan / float64(lonSteps)

	tiles := make([]Area, 0, latSteps*lonSteps)
	for i := 0; i < latSteps; i++ {
		for j := 0; j < lonSteps; j++ {
			tileS := south + float64(i)*latStep
			tileW := west + float64(j)*lonStep
			tileN := south + float64(i+1)*latStep
			tileE := west + float64(j+1)*lonStep
			tiles = append(tiles, Area{
				Name:   fmt.Sprintf("tile_%d_%d", i, j),
				Bounds: geom.NewBounds(geom.XY).Set(tileW, tileS, tileE, tileN),
			})
		}
	}
	return tiles
}
