package matching

import "strings"

// Icon is the semantic icon category shown next to a matched preference.
type Icon string

// Icon categories.
const (
	IconSun      Icon = "sun"
	IconMoon     Icon = "moon"
	IconQuiet    Icon = "quiet"
	IconCrowd    Icon = "crowd"
	IconSeating  Icon = "seating"
	IconBin      Icon = "bin"
	IconShelter  Icon = "shelter"
	IconFlame    Icon = "flame"
	IconFlameAlt Icon = "flame-alt"
	IconUnknown  Icon = "unknown"
)

// Icons lists every icon category, IconUnknown last.
var Icons = []Icon{
	IconSun, IconMoon, IconQuiet, IconCrowd, IconSeating,
	IconBin, IconShelter, IconFlame, IconFlameAlt, IconUnknown,
}

// iconTable is the single canonical label to icon mapping. Keys are lower case.
var iconTable = map[string]Icon{
	"bright":      IconSun,
	"dim":         IconMoon,
	"dark":        IconMoon,
	"quiet":       IconQuiet,
	"silent":      IconQuiet,
	"crowded":     IconCrowd,
	"chair":       IconSeating,
	"waste bin":   IconBin,
	"roof":        IconShelter,
	"cigarette":   IconFlame,
	"e-cigarette": IconFlameAlt,
}

// IconFor returns the icon category for a label, ignoring case and
// surrounding whitespace.
func IconFor(label string) Icon {
	if icon, ok := iconTable[strings.ToLower(strings.TrimSpace(label))]; ok {
		return icon
	}
	return IconUnknown
}
