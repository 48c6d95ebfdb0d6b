package main

import "ecofloss-backend/processor"

func catalogMetadata(category, trees, pandas, inventory string) map[string]string {
	return map[string]string{
		"category":         category,
		"trees_planted":    trees,
		"pandas_supported": pandas,
		"inventory_count":  inventory,
	}
}

// storeCatalog is the processor product catalog, prices in USD cents.
var storeCatalog = []processor.CatalogProduct{
	{
		Name:        "Premium Bamboo Dental Floss",
		Description: "Professional twin-line bamboo fiber floss with custom EcoFloss branding. Zero microplastic shedding with superior strength and natural antibacterial properties. Each 30-meter container is packaged in sustainable, biodegradable materials.",
		Images:      []string{"https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=800&q=80"},
		PriceMinor:  1299,
		Metadata:    catalogMetadata("floss", "3", "1.0", "150"),
	},
	{
		Name:        "Bamboo Toothbrush - Individual",
		Description: "CE-certified bamboo toothbrush with organic charcoal holder design. Features soft Dupont bristles and 100% biodegradable bamboo handle. Ergonomically designed for effective daily cleaning with custom EcoFloss branding.",
		Images:      []string{"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800&q=80"},
		PriceMinor:  899,
		Metadata:    catalogMetadata("toothbrush", "1", "0.5", "200"),
	},
	{
		Name:        "Bamboo Toothbrush - 2 Pack",
		Description: "Duo set of CE-certified bamboo toothbrushes with organic charcoal holders. Perfect for couples or family use. Features soft Dupont bristles, biodegradable handles, and comes in eco-friendly packaging.",
		Images:      []string{"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800&q=80"},
		PriceMinor:  1599,
		Metadata:    catalogMetadata("toothbrush", "2", "1.0", "100"),
	},
	{
		Name:        "Bamboo Interdental Brush Kit",
		Description: "Professional 8-piece bamboo interdental brush set for comprehensive oral care. Includes multiple sizes for different tooth gaps. 100% biodegradable handles with soft, effective bristles for plaque removal.",
		Images:      []string{"https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=800&q=80"},
		PriceMinor:  1699,
		Metadata:    catalogMetadata("floss", "2", "0.75", "75"),
	},
	{
		Name:        "Complete Bamboo Oral Care Travel Kit",
		Description: "All-in-one sustainable travel solution including bamboo toothbrush, dental floss, and interdental brushes. Comes in compact, biodegradable travel case with custom EcoFloss branding. Perfect for eco-conscious travelers.",
		Images:      []string{"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800&q=80"},
		PriceMinor:  2499,
		Metadata:    catalogMetadata("toothbrush", "5", "2.0", "50"),
	},
}
