package models

// Preferences is the caller's stored smoking area preference.
type Preferences struct {
	Ambience     string    `json:"ambience"`
	CrowdLevel   string    `json:"crowdLevel"`
	Facilities   []string  `json:"facilities"`
	SmokingTypes []string  `json:"smokingTypes"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// PreferencesInput replaces the caller's preference.
type PreferencesInput struct {
	Ambience     string   `json:"ambience"`
	CrowdLevel   string   `json:"crowdLevel"`
	Facilities   []string `json:"facilities"`
	SmokingTypes []string `json:"smokingTypes"`
}
