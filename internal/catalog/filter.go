package catalog

import (
	"strings"

	"storefront-service/internal/models"
)

// AllCategories disables category filtering
const AllCategories = "All"

// Filter returns the products matching category and query, in source order.
// The category must match exactly unless it is AllCategories; the query is a
// case-insensitive substring of the name or description.
func Filter(products []models.Product, query, category string) []models.Product {
	q := strings.ToLower(query)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != AllCategories && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists the distinct categories of products in first-seen order
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
