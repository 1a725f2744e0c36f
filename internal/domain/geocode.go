package domain

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode"
)

// Coordinate columns added by geocoding.
const (
	LatitudeColumn  = "Latitude"
	LongitudeColumn = "Longitude"
)

// GeocodeSummary counts the distinct locations looked up during enrichment.
type GeocodeSummary struct {
	Locations int `json:"locations"`
	Resolved  int `json:"resolved"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
}

// EnrichWithGeocoding adds Latitude and Longitude columns resolved from the
// location column. Each distinct location is looked up once. A failed or
// empty lookup leaves NaN in both columns (graceful degradation); only a
// cancelled context aborts the step.
func EnrichWithGeocoding(ctx context.Context, d *Dataset, locCol string, geocoder Geocoder, region string, logger *slog.Logger) (GeocodeSummary, []Warning, error) {
	var summary GeocodeSummary
	if geocoder == nil || locCol == "" {
		return summary, nil, nil
	}
	if !d.Has(locCol) {
		return summary, []Warning{missingColumn("geocode", locCol,
			"location column not found in the DataFrame. Skipping geocoding.")}, nil
	}

	names := d.Strings(locCol)
	resolved := make(map[string]GeocodingResult)
	for _, name := range names {
		if _, seen := resolved[name]; seen {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, nil, err
		}
		summary.Locations++

		result, err := geocoder.ForwardGeocode(ctx, SplitCamelCase(name), region)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, nil, ctxErr
			}
			logger.Warn("forward geocoding failed",
				"location", name,
				"region", region,
				"error", err,
			)
			summary.Failed++
			result = GeocodingResult{}
		case !result.Found():
			summary.NotFound++
		default:
			summary.Resolved++
		}
		resolved[name] = result
	}

	lat := make([]float64, len(names))
	lon := make([]float64, len(names))
	for i, name := range names {
		r := resolved[name]
		if !r.Found() {
			lat[i], lon[i] = math.NaN(), math.NaN()
			continue
		}
		lat[i], lon[i] = r.Lat, r.Lon
	}
	if err := d.SetFloats(LatitudeColumn, lat); err != nil {
		return summary, nil, err
	}
	return summary, nil, d.SetFloats(LongitudeColumn, lon)
}

// SplitCamelCase turns station identifiers such as "AliceSprings" or
// "MountGinini" into "Alice Springs" and "Mount Ginini".
func SplitCamelCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) && runes[i-1] != ' ' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
