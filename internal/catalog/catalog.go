// Package catalog is the read-only product lookup used for pricing and
// display. The core never mutates product rows outside the order
// transaction's stock deduction.
package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/trishadairy/storefront/internal/models"
)

type Reader struct {
	DB *gorm.DB
}

func (r *Reader) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Order("product_id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ByIDs fetches a catalog snapshot for the given ids in one IN query.
// Ids with no product row are simply absent from the result.
func (r *Reader) ByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	snapshot := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return snapshot, nil
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("product_id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		snapshot[p.ID] = p
	}
	return snapshot, nil
}
