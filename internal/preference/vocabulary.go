package preference

// Values offered by the settings screen. Stored preferences and areas may
// carry other free-text values; these lists are not enforced.
var (
	Ambiences    = []string{"Bright", "Dim", "Dark"}
	CrowdLevels  = []string{"Quiet", "Low", "High", "Crowded"}
	Facilities   = []string{"Chair", "Roof", "Waste Bin"}
	SmokingTypes = []string{"Cigarette", "E-cigarette"}
)
