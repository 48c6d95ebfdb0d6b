package cart

import (
	"ecofloss-backend/impact"
	"ecofloss-backend/models"
)

func TotalItems(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the sum of unit price × quantity in major currency units.
func Subtotal(items []models.CartItem) float64 {
	var minor int64
	for _, item := range items {
		minor += item.Product.Price * int64(item.Quantity)
	}
	return float64(minor) / 100
}

// TotalTrees uses the category rate, not the product's own trees-per-purchase figure.
func TotalTrees(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += impact.TreesPlanted(item.Product.Category, item.Quantity)
	}
	return total
}

func TotalMicroplastics(items []models.CartItem) float64 {
	lines := make([]impact.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, impact.Line{Category: item.Product.Category, Quantity: item.Quantity})
	}
	return impact.MicroplasticsEliminated(lines)
}

func ConservationImpact(items []models.CartItem) models.Donation {
	return impact.ConservationImpact(Subtotal(items))
}

// ProductImpact sums each product's own trees and pandas per purchase, as shown on the
// checkout form and in the confirmation email.
func ProductImpact(items []models.CartItem) (trees int, pandas float64) {
	for _, item := range items {
		trees += item.Product.TreesPlantedPerPurchase * item.Quantity
		pandas += item.Product.PandasSupportedPerPurchase * float64(item.Quantity)
	}
	return trees, pandas
}
