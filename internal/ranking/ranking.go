// Package ranking orders smoking areas for display.
//
// Rank is pure: it performs no I/O, keeps no state and never fails. Every
// ordering is stable, so areas that compare equal keep their input order.
package ranking

import (
	"errors"
	"sort"
	"strings"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/geo"
)

// ErrUnknownMode is returned by ParseMode for unrecognized mode names.
var ErrUnknownMode = errors.New("unknown ranking mode")

// Mode selects the ordering applied by Rank.
type Mode string

// Ranking modes.
const (
	// ModeNearest orders by distance from the caller, closest first.
	ModeNearest Mode = "nearest"
	// ModeFacility orders by facility grade, best first.
	ModeFacility Mode = "facility"
	// ModeFavorite keeps only favorite areas, in input order.
	ModeFavorite Mode = "favorite"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeNearest, ModeFacility, ModeFavorite}

// ParseMode parses a mode name case-insensitively. An empty name selects
// ModeNearest.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeNearest):
		return ModeNearest, nil
	case string(ModeFacility):
		return ModeFacility, nil
	case string(ModeFavorite):
		return ModeFavorite, nil
	default:
		return "", ErrUnknownMode
	}
}

// Ranked is an area in ranked position. DistanceMeters is set only in
// ModeNearest when the caller's position is known.
type Ranked struct {
	Area           *area.Area
	DistanceMeters *float64
}

// GradeWeight returns the sort weight of a facility grade. Unknown grades
// weigh 3 and sort after Low.
func GradeWeight(g area.Grade) int {
	switch g {
	case area.GradeHigh:
		return 0
	case area.GradeModerate:
		return 1
	case area.GradeLow:
		return 2
	default:
		return 3
	}
}

// Rank orders areas according to mode. origin is the caller's position and
// may be nil; in ModeNearest a nil origin leaves the input order unchanged.
// An unrecognized mode also returns the input order.
func Rank(areas []*area.Area, mode Mode, origin *geo.Point) []Ranked {
	ranked := make([]Ranked, 0, len(areas))

	switch mode {
	case ModeFavorite:
		for _, a := range areas {
			if a.IsFavorite {
				ranked = append(ranked, Ranked{Area: a})
			}
		}
		return ranked

	case ModeNearest:
		for _, a := range areas {
			r := Ranked{Area: a}
			if origin != nil {
				d := geo.Distance(*origin, a.Point)
				r.DistanceMeters = &d
			}
			ranked = append(ranked, r)
		}
		if origin == nil {
			return ranked
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return *ranked[i].DistanceMeters < *ranked[j].DistanceMeters
		})
		return ranked

	case ModeFacility:
		for _, a := range areas {
			ranked = append(ranked, Ranked{Area: a})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return GradeWeight(ranked[i].Area.Grade) < GradeWeight(ranked[j].Area.Grade)
		})
		return ranked

	default:
		for _, a := range areas {
			ranked = append(ranked, Ranked{Area: a})
		}
		return ranked
	}
}

// Areas returns the areas of ranked in order.
func Areas(ranked []Ranked) []*area.Area {
	out := make([]*area.Area, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Area)
	}
	return out
}
