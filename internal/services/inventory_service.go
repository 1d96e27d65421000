package services

import (
	"context"
	"fmt"

	"beecommerce/internal/domain"
	"beecommerce/internal/repos"
	"beecommerce/internal/validate"
)

// LowStockThreshold is the level at and below which a product is LOW_STOCK.
const LowStockThreshold = 5

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// Availability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) Availability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Inv.Stock(ctx, productID)
	if err != nil {
		return domain.Availability{}, notFoundAs(err, ErrProductNotFound)
	}
	status := "OUT_OF_STOCK"
	switch {
	case qty > LowStockThreshold:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{ProductID: productID, Status: status, Qty: qty}, nil
}

// Low lists products at or below threshold for restocking.
func (s *InventoryService) Low(ctx context.Context, threshold int) ([]repos.InventoryRow, error) {
	if threshold < 0 {
		threshold = LowStockThreshold
	}
	return s.Inv.Low(ctx, threshold)
}

// SetStock overwrites a product's stock level (admin restock).
func (s *InventoryService) SetStock(ctx context.Context, productID string, qty int) error {
	if !validate.Stock(qty) {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidQuantityOrPrice)
	}
	return notFoundAs(s.Inv.SetStock(ctx, productID, qty), ErrProductNotFound)
}
