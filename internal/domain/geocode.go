package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// GeocodingResult is the result of resolving a position to the nearest named place.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	// Relevance is the provider's match score in [0, 1].
	Relevance float64
}

// Geocoder resolves a position to the nearest named place.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// DescribeSite fills an empty site description from the place nearest to the
// site's first observation. A nil geocoder, a lookup error or an empty result
// leave the site unchanged.
func DescribeSite(ctx context.Context, site Site, at Point, geocoder Geocoder, logger *slog.Logger) Site {
	if geocoder == nil || site.Description != "" {
		return site
	}
	if at.Lat == 0 && at.Lon == 0 {
		return site
	}

	result, err := geocoder.ReverseGeocode(ctx, at.Lat, at.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"site", site.Name,
			"lat", at.Lat,
			"lon", at.Lon,
			"error", err,
		)
		return site
	}
	if result.FormattedAddress == "" {
		return site
	}
	site.Description = fmt.Sprintf("First observed near %s", result.FormattedAddress)
	return site
}
