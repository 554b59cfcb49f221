package geo

import (
	"context"
	"strings"

	geom "github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/pkg/nominatim"
)

// maxTileSpan is the largest span in degrees a geocoded bounding box tile
// may have before subdivision.
const maxTileSpan = 2.0

// Resolution holds the areas a spatial search should cover.
type Resolution struct {
	Areas []Area
	// Nationwide is set when no location was supplied and the areas are the
	// representative national sample; callers may raise their parallelism.
	Nationwide bool
}

// Resolver turns free-text locations into query areas, using the static
// city/state tables first and a geocoder as fallback.
type Resolver struct {
	geocoder nominatim.Client
}

// NewResolver creates a Resolver. The geocoder may be nil, in which case
// unknown locations skip straight to the fallback metros.
func NewResolver(geocoder nominatim.Client) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// Resolve maps a location to bounded areas.
//
// Resolution order: state name or abbreviation, then city-name matching,
// then geocoding (subdivided into tiles), then the largest-metro fallback.
// No location at all produces the nationwide sample.
func (r *Resolver) Resolve(ctx context.Context, location string) Resolution {
	if strings.TrimSpace(location) == "" {
		return Resolution{Areas: NationwideSample(), Nationwide: true}
	}

	areas := ResolveCities(location)
	if len(areas) > 0 {
		return Resolution{Areas: areas}
	}

	if r.geocoder != nil {
		bbox, err := r.geocoder.GeocodeUS(ctx, location)
		if err != nil {
			zap.L().Debug("geocode failed", zap.String("location", location), zap.Error(err))
		} else if bbox != nil {
			b := geom.NewBounds(geom.XY).Set(bbox.West, bbox.South, bbox.East, bbox.North)
			tiles := Subdivide(b, maxTileSpan)
			zap.L().Info("geocoded location",
				zap.String("location", location),
				zap.Int("tiles", len(tiles)),
			)
			return Resolution{Areas: tiles}
		}
	}

	zap.L().Warn("unresolvable location, defaulting to largest metros",
		zap.String("location", location),
	)
	return Resolution{Areas: FallbackCities()}
}
