package control

import (
	"strings"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// wireLowStockMax is the inclusive upper bound of the wires screen's
// low-stock band. The other categories only distinguish in/out of stock.
const wireLowStockMax = 10

// ProductConfig declares one of the nine catalog screens. All of them run
// on the shared engine; only the facets, thresholds and rules differ.
func ProductConfig(category models.Category) Config[models.Product] {
	cfg := Config[models.Product]{
		Collection: category.Collection(),
		Search: func(p models.Product) []string {
			return []string{p.Name, p.Description}
		},
		Facets: []Facet[models.Product]{
			{Key: "brand", Value: func(p models.Product) string { return p.Brand }},
			{Key: "type", Value: func(p models.Product) string { return p.Type }},
		},
		Stock:     func(p models.Product) models.Availability { return p.Availability },
		Rules:     productRules(),
		Images:    func(p models.Product) models.ImageList { return p.Images },
		SetImages: func(p *models.Product, images models.ImageList) { p.Images = images },
	}

	switch category {
	case models.CategoryWire:
		cfg.LowStockMax = wireLowStockMax
		cfg.Facets = append(cfg.Facets, Facet[models.Product]{
			Key: "wireGauge", Value: func(p models.Product) string { return p.WireGauge },
		})
	case models.CategoryCharger, models.CategoryPlug:
		cfg.Facets = append(cfg.Facets, Facet[models.Product]{
			Key: "connectorType", Value: func(p models.Product) string { return p.ConnectorType },
		})
	case models.CategoryStation:
		cfg.Facets = append(cfg.Facets, Facet[models.Product]{
			Key: "phase", Value: func(p models.Product) string { return p.Phase },
		})
	case models.CategoryBox:
		cfg.Facets = append(cfg.Facets, Facet[models.Product]{
			Key: "size", Value: func(p models.Product) string { return p.Size },
		})
	}

	return cfg
}

func productRules() []Rule[models.Product] {
	nonNegative := func(v *float64) bool { return v == nil || *v >= 0 }
	percentage := func(v *float64) bool { return v == nil || (*v >= 0 && *v <= 100) }

	return []Rule[models.Product]{
		{
			Valid:   func(p models.Product) bool { return strings.TrimSpace(p.Name) != "" },
			Message: "اسم المنتج مطلوب",
		},
		{
			Valid:   func(p models.Product) bool { return p.Price > 0 },
			Message: "السعر يجب أن يكون أكبر من صفر",
		},
		{
			Valid:   func(p models.Product) bool { return p.Availability.Count >= 0 },
			Message: "الكمية لا يمكن أن تكون سالبة",
		},
		{
			Valid:   func(p models.Product) bool { return p.Offer.Percentage >= 0 && p.Offer.Percentage <= 100 },
			Message: "نسبة الخصم يجب أن تكون بين 0 و 100",
		},
		{
			Valid:   func(p models.Product) bool { return nonNegative(p.Voltage) },
			Message: "الجهد لا يمكن أن يكون سالباً",
		},
		{
			Valid:   func(p models.Product) bool { return nonNegative(p.Current) },
			Message: "التيار لا يمكن أن يكون سالباً",
		},
		{
			Valid:   func(p models.Product) bool { return nonNegative(p.Ampere) },
			Message: "الأمبير لا يمكن أن يكون سالباً",
		},
		{
			Valid:   func(p models.Product) bool { return percentage(p.Efficiency) },
			Message: "الكفاءة يجب أن تكون بين 0 و 100",
		},
		{
			Valid:   func(p models.Product) bool { return nonNegative(p.CableLength) },
			Message: "طول الكابل لا يمكن أن يكون سالباً",
		},
	}
}
