package catalog

import (
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

// Fallback returns a fresh copy of the bundled catalog. It seeds the store
// before any remote snapshot arrives and is the degradation target whenever
// the remote channel errors or comes back empty.
func Fallback() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Thuluth Majesty",
			Category:    "Classical Thuluth",
			ImageURL:    "/products/p1/p1.png",
			ImageList:   models.StringList{"/products/p1/p1.png", "/products/p1/p2.png", "/products/p1/p3.png"},
			Description: "A monumental script characterized by its verticality and rhythmic flow.",
			Price:       decimal.NewFromInt(1200),
			Tags:        models.StringList{"monumental", "classical"},
		},
		{
			ID:          "2",
			Name:        "Diwani Flow",
			Category:    "Ottoman Diwani",
			ImageURL:    "/products/p2/p2.png",
			ImageList:   models.StringList{"/products/p2/p2.png"},
			Description: "Intricate, overlapping curves that dance across the canvas with royal elegance.",
			Price:       decimal.NewFromInt(950),
			Tags:        models.StringList{"elegant", "royal"},
		},
		{
			ID:          "3",
			Name:        "Kufic Geometry",
			Category:    "Square Kufic",
			ImageURL:    "/products/p3/p3 (1).png",
			ImageList:   models.StringList{"/products/p3/p3 (1).png", "/products/p3/p3 (2).png", "/products/p3/p3 (3).png"},
			Description: "Architectural precision meeting ancient angular forms.",
			Price:       decimal.NewFromInt(1500),
			Tags:        models.StringList{"architectural", "geometric"},
		},
		{
			ID:          "4",
			Name:        "Naskh Clarity",
			Category:    "Classical Naskh",
			ImageURL:    "/products/p4/p4 (1).png",
			ImageList:   models.StringList{"/products/p4/p4 (1).png", "/products/p4/p4 (2).png", "/products/p4/p4 (3).png", "/products/p4/p4 (4).png"},
			Description: "The script of clarity, refined for the modern digital eye.",
			Price:       decimal.NewFromInt(800),
			Tags:        models.StringList{"refined", "digital"},
		},
		{
			ID:          "e1",
			Name:        "Echoes of a Neon Horizon",
			Category:    "Original Soundtrack",
			Price:       decimal.NewFromInt(450),
			ImageURL:    "/products/p5/p5 (1).png",
			ImageList:   models.StringList{"/products/p5/p5 (1).png", "/products/p5/p5 (2).png"},
			Description: "Original Motion Picture Soundtrack",
			Tags:        models.StringList{"neon", "horizon"},
		},
		{
			ID:          "e2",
			Name:        "The Gilded Crown",
			Category:    "Broadway Musical",
			Price:       decimal.NewFromInt(600),
			ImageURL:    "/products/p6/p61.png",
			ImageList:   models.StringList{"/products/p6/p61.png", "/products/p6/p62.png", "/products/p6/p63.png"},
			Description: "Broadway Musical & Classic Animation",
			Tags:        models.StringList{"gilded", "crown"},
		},
	}
}
