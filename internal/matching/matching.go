// Package matching scores how well a smoking area fits a device's preference.
package matching

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/preference"
)

// Match is one preference the area satisfies.
type Match struct {
	Icon  Icon
	Label string
}

// Result is the outcome of scoring an area against a preference.
type Result struct {
	// Percentage is Score/Total*100, or 0 when Total is 0.
	Percentage float64
	// Rounded is Percentage rounded to the nearest integer for display.
	Rounded int
	Score   int
	Total   int
	Matches []Match
}

// Score compares an area with a preference. Ambience and crowd level each
// count once toward the total and match on case-insensitive equality. A blank
// ambience or crowd level never matches, even when the area's value is blank
// too; it still counts toward the total.
// Facilities and smoking types count once per distinct preferred value and
// match on case-insensitive set intersection. Matches are listed in
// preference order. A nil preference scores zero.
func Score(a *area.Area, p *preference.Preference) Result {
	var r Result
	if a == nil || p == nil {
		r.Matches = []Match{}
		return r
	}

	r.Matches = make([]Match, 0, 2+len(p.Facilities)+len(p.SmokingTypes))

	r.Total++
	if sameValue(a.Ambience, p.Ambience) {
		r.Score++
		r.Matches = append(r.Matches, newMatch(p.Ambience))
	}

	r.Total++
	if sameValue(a.CrowdLevel, p.CrowdLevel) {
		r.Score++
		r.Matches = append(r.Matches, newMatch(p.CrowdLevel))
	}

	r.intersect(p.Facilities, a.FacilityNames())
	r.intersect(p.SmokingTypes, a.SmokingTypes)

	if r.Total > 0 {
		r.Percentage = float64(r.Score) / float64(r.Total) * 100
	}
	r.Rounded = int(math.Round(r.Percentage))
	return r
}

// intersect adds one to Total for every distinct non-blank preferred value
// and one to Score for each of those the area offers.
func (r *Result) intersect(preferred, offered []string) {
	available := make(map[string]struct{}, len(offered))
	for _, v := range offered {
		available[normalize(v)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(preferred))
	for _, v := range preferred {
		key := normalize(v)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		r.Total++
		if _, ok := available[key]; ok {
			r.Score++
			r.Matches = append(r.Matches, newMatch(v))
		}
	}
}

// sameValue reports whether two single-valued attributes match. A blank
// value never matches.
func sameValue(a, b string) bool {
	a, b = normalize(a), normalize(b)
	return a != "" && a == b
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func newMatch(value string) Match {
	return Match{Icon: IconFor(value), Label: Label(value)}
}

// Label formats a preference value for display, e.g. "waste bin" becomes
// "Waste Bin".
func Label(value string) string {
	return cases.Title(language.English).String(strings.TrimSpace(value))
}
