package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecofloss-backend/dtos"
	"ecofloss-backend/models"
	"ecofloss-backend/processor"
)

func catalogProcessor() *mockProcessor {
	proc := newMockProcessor()
	proc.ListActiveProductsFn = func(int64) (processor.Page[processor.Product], error) {
		return processor.Page[processor.Product]{Items: []processor.Product{
			{
				ID:          "prod_floss",
				Name:        "Premium Bamboo Dental Floss",
				Description: "Twin-line bamboo fiber floss",
				Images:      []string{"https://images.example/floss.jpg"},
				Active:      true,
				Metadata: map[string]string{
					"category":         "floss",
					"trees_planted":    "3",
					"pandas_supported": "1.0",
					"inventory_count":  "150",
				},
			},
			{ID: "prod_plain", Name: "Gift Card", Active: true},
		}}, nil
	}
	proc.ListActivePricesFn = func(int64) (processor.Page[processor.Price], error) {
		return processor.Page[processor.Price]{Items: []processor.Price{
			{ID: "price_floss_1", ProductID: "prod_floss", UnitAmount: 1299},
			{ID: "price_floss_2", ProductID: "prod_floss", UnitAmount: 999},
		}}, nil
	}
	return proc
}

func decodeProductList(t *testing.T, w *httptest.ResponseRecorder) dtos.ProductListResponse {
	t.Helper()
	var resp dtos.ProductListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGetProductsProjectsCatalog(t *testing.T) {
	proc := catalogProcessor()
	router := setupProductRouter(proc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeProductList(t, w)
	if resp.Count != 2 || len(resp.Products) != 2 {
		t.Fatalf("expected 2 products, got count=%d len=%d", resp.Count, len(resp.Products))
	}

	floss := resp.Products[0]
	if floss.Price != 1299 || floss.PriceID != "price_floss_1" {
		t.Errorf("expected first price 1299/price_floss_1, got %d/%s", floss.Price, floss.PriceID)
	}
	if floss.Category != models.CategoryFloss {
		t.Errorf("expected category floss, got %s", floss.Category)
	}
	if floss.TreesPlantedPerPurchase != 3 || floss.PandasSupportedPerPurchase != 1.0 || floss.InventoryCount != 150 {
		t.Errorf("unexpected impact fields: %+v", floss)
	}
	if len(floss.Images) != 1 || len(floss.ImageURLs) != 1 {
		t.Errorf("expected images mirrored into image_urls, got %v / %v", floss.Images, floss.ImageURLs)
	}
	if !floss.IsActive {
		t.Error("expected is_active true")
	}

	for _, limit := range proc.ListLimits {
		if limit != CatalogPageSize {
			t.Errorf("expected page size %d, got %d", CatalogPageSize, limit)
		}
	}
}

func TestGetProductsMetadataDefaults(t *testing.T) {
	router := setupProductRouter(catalogProcessor())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	plain := decodeProductList(t, w).Products[1]
	if plain.Category != "oral-care" {
		t.Errorf("expected default category 'oral-care', got %s", plain.Category)
	}
	if plain.TreesPlantedPerPurchase != 1 {
		t.Errorf("expected default trees 1, got %d", plain.TreesPlantedPerPurchase)
	}
	if plain.PandasSupportedPerPurchase != 0.5 {
		t.Errorf("expected default pandas 0.5, got %v", plain.PandasSupportedPerPurchase)
	}
	if plain.InventoryCount != 100 {
		t.Errorf("expected default inventory 100, got %d", plain.InventoryCount)
	}
	if plain.Price != 0 || plain.PriceID != "" {
		t.Errorf("expected no price, got %d/%s", plain.Price, plain.PriceID)
	}
}

func TestGetProductsAlwaysSendsImagesAndPriceID(t *testing.T) {
	router := setupProductRouter(catalogProcessor())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	var raw struct {
		Products []map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(raw.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(raw.Products))
	}

	plain := raw.Products[1]
	if got := string(plain["images"]); got != "[]" {
		t.Errorf("expected images [], got %q", got)
	}
	if got := string(plain["price_id"]); got != `""` {
		t.Errorf("expected empty price_id, got %q", got)
	}
}

func TestGetProductsTruncatedPageStillSucceeds(t *testing.T) {
	proc := catalogProcessor()
	proc.ListActivePricesFn = func(int64) (processor.Page[processor.Price], error) {
		return processor.Page[processor.Price]{HasMore: true}, nil
	}
	router := setupProductRouter(proc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestGetProductsProcessorError(t *testing.T) {
	proc := catalogProcessor()
	proc.ListActivePricesFn = func(int64) (processor.Page[processor.Price], error) {
		return processor.Page[processor.Price]{}, errors.New("rate limited")
	}
	router := setupProductRouter(proc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["error"] != "Failed to fetch products" {
		t.Errorf("expected generic error, got %v", resp["error"])
	}
}

func TestGetProductsEmptyCatalog(t *testing.T) {
	router := setupProductRouter(newMockProcessor())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	resp := parseResponse(w)
	products, ok := resp["products"].([]interface{})
	if !ok || len(products) != 0 {
		t.Errorf("expected empty products array, got %v", resp["products"])
	}
	if resp["count"] != float64(0) {
		t.Errorf("expected count 0, got %v", resp["count"])
	}
}

func TestHealth(t *testing.T) {
	router := setupProductRouter(newMockProcessor())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["status"] != "OK" {
		t.Errorf("expected status 'OK', got %v", resp["status"])
	}
	ts, _ := resp["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q", ts)
	}
}
