package handlers

import (
	"net/http"

	"ecofloss-backend/dtos"
	"ecofloss-backend/models"
	"ecofloss-backend/processor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogPageSize bounds both processor listings. Only the first page is read.
const CatalogPageSize = 100

type ProductHandler struct {
	Catalog processor.Catalog
	Logger  *zap.Logger
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var (
		products processor.Page[processor.Product]
		prices   processor.Page[processor.Price]
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		products, err = h.Catalog.ListActiveProducts(ctx, CatalogPageSize)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = h.Catalog.ListActivePrices(ctx, CatalogPageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		h.Logger.Error("Error fetching products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to fetch products"})
		return
	}

	if products.HasMore || prices.HasMore {
		h.Logger.Warn("catalog truncated to first page",
			zap.Int("page_size", CatalogPageSize),
			zap.Bool("more_products", products.HasMore),
			zap.Bool("more_prices", prices.HasMore),
		)
	}

	catalog := ProjectCatalog(products.Items, prices.Items)
	c.JSON(http.StatusOK, dtos.ProductListResponse{Products: catalog, Count: len(catalog)})
}

// ProjectCatalog maps processor products to storefront products. Each product takes
// the first listed price that references it; a product without a price gets 0.
func ProjectCatalog(products []processor.Product, prices []processor.Price) []models.Product {
	firstPrice := make(map[string]processor.Price, len(prices))
	for _, p := range prices {
		if p.ProductID == "" {
			continue
		}
		if _, ok := firstPrice[p.ProductID]; !ok {
			firstPrice[p.ProductID] = p
		}
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		md := models.ParseProductMetadata(p.Metadata)
		price := firstPrice[p.ID]
		images := p.Images
		if images == nil {
			images = []string{}
		}

		out = append(out, models.Product{
			ID:                         p.ID,
			Name:                       p.Name,
			Description:                p.Description,
			Price:                      price.UnitAmount,
			PriceID:                    price.ID,
			Images:                     images,
			ImageURLs:                  images,
			Category:                   md.Category,
			TreesPlantedPerPurchase:    md.TreesPerUnit,
			PandasSupportedPerPurchase: md.PandasPerUnit,
			InventoryCount:             md.InventoryCount,
			IsActive:                   p.Active,
		})
	}
	return out
}
