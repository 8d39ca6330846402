package models

// SmokingArea is a designated smoking area as returned by the API.
type SmokingArea struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Location          string    `json:"location"`
	Point             Point     `json:"point"`
	PhotoURL          string    `json:"photoUrl"`
	DisposalPhotoURL  string    `json:"disposalPhotoUrl"`
	DisposalDirection string    `json:"disposalDirection"`
	Facilities        []string  `json:"facilities"`
	IsFavorite        bool      `json:"isFavorite"`
	Photos            []string  `json:"photos"`
	FacilityGrade     string    `json:"facilityGrade"`
	Ambience          string    `json:"ambience"`
	CrowdLevel        string    `json:"crowdLevel"`
	SmokingTypes      []string  `json:"smokingTypes"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

// AreaInput is the payload used to create or import a smoking area.
// When ID is set and the area exists it is replaced.
type AreaInput struct {
	ID                *string  `json:"id,omitempty"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	Point             Point    `json:"point"`
	PhotoURL          string   `json:"photoUrl"`
	DisposalPhotoURL  string   `json:"disposalPhotoUrl"`
	DisposalDirection string   `json:"disposalDirection"`
	Facilities        []string `json:"facilities"`
	Photos            []string `json:"photos"`
	FacilityGrade     string   `json:"facilityGrade"`
	Ambience          string   `json:"ambience"`
	CrowdLevel        string   `json:"crowdLevel"`
	SmokingTypes      []string `json:"smokingTypes"`
}

// FavoriteInput sets the favorite flag explicitly.
type FavoriteInput struct {
	IsFavorite *bool `json:"isFavorite"`
}

// MatchTag is one attribute an area shares with the caller's preferences.
type MatchTag struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// MatchResult describes how well an area fits the caller's preferences.
type MatchResult struct {
	Percentage        float64    `json:"percentage"`
	PercentageRounded int        `json:"percentageRounded"`
	Score             int        `json:"score"`
	Total             int        `json:"total"`
	Matches           []MatchTag `json:"matches"`
}

// AreaListItem is a ranked smoking area.
type AreaListItem struct {
	Area            SmokingArea `json:"area"`
	DistanceMeters  *float64    `json:"distanceMeters"`
	DistanceText    string      `json:"distanceText"`
	MatchPercentage int         `json:"matchPercentage"`
}

// AreaListing is the response of the ranked area listing.
type AreaListing struct {
	Mode         RankingMode    `json:"mode"`
	Origin       *Point         `json:"origin,omitempty"`
	OriginSource OriginSource   `json:"originSource"`
	Nearest      *AreaListItem  `json:"nearest,omitempty"`
	Items        []AreaListItem `json:"items"`
}

// AreaDetail is a single area with distance and full match details.
type AreaDetail struct {
	Area           SmokingArea `json:"area"`
	DistanceMeters *float64    `json:"distanceMeters"`
	DistanceText   string      `json:"distanceText"`
	Match          MatchResult `json:"match"`
}
