package area

import "github.com/geosmoke/geosmoke/internal/api/models"

const placeholderPhoto = "https://upload.wikimedia.org/wikipedia/commons/6/6a/JavaScript-logo.png"

// DefaultCatalog returns the areas preloaded on first start.
func DefaultCatalog() []models.AreaInput {
	return []models.AreaInput{
		{
			Name:              "The Shady",
			Location:          "GOP 1",
			Point:             models.Point{Lat: -6.3009886, Lon: 106.6510372},
			PhotoURL:          placeholderPhoto,
			DisposalPhotoURL:  placeholderPhoto,
			DisposalDirection: "Bin is next to the bench, left of the entrance",
			Facilities:        []string{"Chair", "Roof"},
			Photos:            []string{placeholderPhoto},
			FacilityGrade:     string(GradeModerate),
			Ambience:          "Dim",
			CrowdLevel:        "Quiet",
			SmokingTypes:      []string{"Cigarette"},
		},
		{
			Name:              "Garden Seating",
			Location:          "Garden",
			Point:             models.Point{Lat: -6.3013122, Lon: 106.6522975},
			PhotoURL:          placeholderPhoto,
			DisposalPhotoURL:  placeholderPhoto,
			DisposalDirection: "Waste bins along the garden path",
			Facilities:        []string{"Chair", "Waste Bin", "Roof"},
			Photos:            []string{placeholderPhoto, placeholderPhoto},
			FacilityGrade:     string(GradeHigh),
			Ambience:          "Bright",
			CrowdLevel:        "Low",
			SmokingTypes:      []string{"Cigarette", "E-cigarette"},
		},
	}
}
