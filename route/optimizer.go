package route

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
)

var ErrPivotNotFound = fmt.Errorf("no point matches the pivot query")

// poiCoordinate parses a detail's POI coordinate string. Missing or malformed
// coordinates yield nil, which the optimizer treats as unknown distance.
func poiCoordinate(d schema.VisitDetail) *geo.Coordinate {
	if d.POI == nil || d.POI.Coordinates == "" {
		return nil
	}
	c, err := geo.Parse(d.POI.Coordinates)
	if err != nil {
		return nil
	}
	return c
}

// Optimize orders a pending-visit queue by ascending distance from the
// reference point. Visits whose POI has no usable coordinate sort last.
// Presentation order only: nothing is persisted, and repeated calls with
// different reference points are side-effect free.
func Optimize(details []schema.VisitDetail, ref geo.Coordinate) []schema.VisitDetail {
	type entry struct {
		detail   schema.VisitDetail
		distance float64
	}

	entries := make([]entry, 0, len(details))
	for _, d := range details {
		distance := math.Inf(1)
		if c := poiCoordinate(d); c != nil {
			distance = geo.Distance(ref, *c)
		}
		entries = append(entries, entry{detail: d, distance: distance})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].distance != entries[j].distance {
			return entries[i].distance < entries[j].distance
		}
		// deterministic order for equal (incl. unknown) distances
		return entries[i].detail.ID.Hex() < entries[j].detail.ID.Hex()
	})

	ordered := make([]schema.VisitDetail, 0, len(entries))
	for _, e := range entries {
		ordered = append(ordered, e.detail)
	}
	return ordered
}

// FindPivot locates the first POI whose name or neighborhood contains the
// query, case-insensitively, and returns its coordinate. POIs without usable
// coordinates never match.
func FindPivot(pois []schema.POI, query string) (*geo.Coordinate, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrPivotNotFound
	}

	for _, p := range pois {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Neighborhood), q) {
			continue
		}
		if p.Coordinates == "" {
			continue
		}
		if c, err := geo.Parse(p.Coordinates); err == nil {
			return c, nil
		}
	}

	return nil, ErrPivotNotFound
}

// WithinRadius restricts the set to visits whose POI lies within radiusKm of
// the pivot. Order and assignment state are untouched; visits with unknown
// coordinates are excluded since their distance cannot be established.
func WithinRadius(details []schema.VisitDetail, pivot geo.Coordinate, radiusKm float64) []schema.VisitDetail {
	kept := make([]schema.VisitDetail, 0, len(details))
	for _, d := range details {
		c := poiCoordinate(d)
		if c == nil {
			continue
		}
		if geo.Distance(pivot, *c) <= radiusKm {
			kept = append(kept, d)
		}
	}
	return kept
}
