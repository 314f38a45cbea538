package stub

import (
	"math"
	"strconv"
	"strings"

	"github.com/conorls/dublinrent/internal/api"
	"github.com/conorls/dublinrent/internal/models"
)

// Fixed option lists matching the real service's training data.
var (
	propertyTypes = []string{"apartment", "house", "studio", "duplex"}
	dublinAreas   = []string{
		"dublin-1", "dublin-2", "dublin-3", "dublin-4", "dublin-6",
		"dublin-7", "dublin-8", "dublin-9", "dublin-12", "dublin-15",
	}
	roomTypes = []string{"single", "double", "twin"}
)

// areaPremium returns a monthly premium for the postal district. Central
// districts rent higher.
func areaPremium(dublinArea string) float64 {
	n, err := strconv.Atoi(strings.TrimPrefix(dublinArea, "dublin-"))
	if err != nil {
		return 0
	}
	switch {
	case n <= 2 || n == 4 || n == 6:
		return 400
	case n <= 9:
		return 200
	default:
		return 50
	}
}

// estimate produces a deterministic price for a validated request.
func estimate(pr api.PredictRequest) models.PredictionResult {
	var price float64
	if pr.IsShared {
		price = 650 + areaPremium(pr.DublinArea)/2
		switch pr.RoomType {
		case "double":
			price += 150
		case "twin":
			price -= 80
		}
		if pr.PropertyType == "apartment" {
			price += 60
		}
	} else {
		bedrooms, _ := strconv.ParseFloat(pr.Bedrooms, 64)
		bathrooms, _ := strconv.ParseFloat(pr.Bathrooms, 64)
		price = 900 + 420*bedrooms + 160*bathrooms + areaPremium(pr.DublinArea)
		if pr.PropertyType == "house" {
			price += 120
		}
	}

	lower := math.Round(price * 0.88)
	upper := math.Round(price * 1.12)
	return models.PredictionResult{
		PredictedPrice: math.Round(price),
		LowerBound:     &lower,
		UpperBound:     &upper,
	}
}

// modelInfoFor returns a canned statistics snapshot for the variant.
func modelInfoFor(variant models.Variant) models.ModelInfo {
	if variant == models.VariantSharing {
		return models.ModelInfo{
			FeatureImportances: map[string]float64{
				"address_area":  0.41,
				"room_type":     0.33,
				"property_type": 0.26,
			},
			ModelType: "sharing",
			ModelName: "Shared Room Model",
			Status:    "Shared Room Model active",
			ModelMetrics: map[string]any{
				"r2_score": 0.71,
				"mae":      98.4,
			},
			DataSummary: map[string]any{
				"sample_count": 5210,
				"price_mean":   812.0,
			},
			AvailableOptions: map[string][]string{
				"property_types": propertyTypes,
				"dublin_areas":   dublinAreas,
				"room_types":     roomTypes,
			},
		}
	}
	return models.ModelInfo{
		FeatureImportances: map[string]float64{
			"bedrooms":      0.34,
			"address_area":  0.31,
			"bathrooms":     0.19,
			"property_type": 0.16,
		},
		ModelType: "property",
		ModelName: "Property Model",
		Status:    "Property Model active",
		ModelMetrics: map[string]any{
			"r2_score": 0.83,
			"mae":      214.7,
		},
		DataSummary: map[string]any{
			"sample_count": 11432,
			"price_mean":   2146.0,
		},
		AvailableOptions: map[string][]string{
			"property_types": propertyTypes,
			"dublin_areas":   dublinAreas,
		},
	}
}

// healthStatus reports both stub models as trained and ready.
func healthStatus() models.HealthStatus {
	return models.HealthStatus{
		Status:               "healthy",
		PropertyModelTrained: true,
		SharedModelTrained:   true,
		BothModelsReady:      true,
	}
}
