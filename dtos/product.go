package dtos

import "ecofloss-backend/models"

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
