package models

// Enums represents the enum values and vocabularies used by the API.
type Enums struct {
	RankingModes   []RankingMode `json:"rankingModes"`
	FacilityGrades []string      `json:"facilityGrades"`
	Ambiences      []string      `json:"ambiences"`
	CrowdLevels    []string      `json:"crowdLevels"`
	Facilities     []string      `json:"facilities"`
	SmokingTypes   []string      `json:"smokingTypes"`
	MatchIcons     []string      `json:"matchIcons"`
}
