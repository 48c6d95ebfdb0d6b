// Package impact maps purchases to their environmental metrics.
package impact

import "ecofloss-backend/models"

// Grams of microplastics kept out per product per year.
var microplasticGrams = map[models.Category]float64{
	models.CategoryFloss:      2.5,
	models.CategoryToothbrush: 1.2,
}

const donationRate = 0.10

// TreesPerUnit returns 3 for floss, 2 for toothpaste and 1 for anything else.
func TreesPerUnit(category models.Category) int {
	switch category {
	case models.CategoryFloss:
		return 3
	case models.CategoryToothpaste:
		return 2
	default:
		return 1
	}
}

func TreesPlanted(category models.Category, quantity int) int {
	return TreesPerUnit(category) * quantity
}

// Line is a category/quantity pair fed to MicroplasticsEliminated.
type Line struct {
	Category models.Category
	Quantity int
}

// MicroplasticsEliminated sums grams across lines. Only floss and toothbrush carry a
// rate; every other category, toothpaste included, is counted at the floss rate.
func MicroplasticsEliminated(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		category := l.Category
		if category != models.CategoryToothbrush {
			category = models.CategoryFloss
		}
		total += microplasticGrams[category] * float64(l.Quantity)
	}
	return total
}

// ConservationImpact allocates 10% of orderTotal, split evenly between bamboo
// reforestation and panda conservation.
func ConservationImpact(orderTotal float64) models.Donation {
	donation := orderTotal * donationRate
	return models.Donation{
		TotalDonation:       donation,
		BambooReforestation: donation * 0.5,
		PandaConservation:   donation * 0.5,
	}
}
