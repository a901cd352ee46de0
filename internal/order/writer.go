// Package order converts a session cart into durable order records.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trishadairy/storefront/internal/cart"
	"github.com/trishadairy/storefront/internal/models"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrOutOfStock = errors.New("not enough stock")
)

type Details struct {
	Name          string
	Address       string
	City          string
	Pincode       string
	Phone         string
	Instructions  string
	PaymentMethod string
}

type Writer struct {
	DB *gorm.DB
}

// Place persists one order header plus its lines in a single transaction.
// Product rows are locked for the duration, stock is checked and deducted,
// and unit prices are snapshotted into order_items at this instant. On any
// failure the whole order rolls back; no header is ever left without lines.
func (w *Writer) Place(ctx context.Context, userID uint, c cart.Cart, d Details) (*models.Order, []models.OrderItem, error) {
	if len(c) == 0 {
		return nil, nil, ErrEmptyCart
	}

	var (
		header models.Order
		items  []models.OrderItem
	)

	txErr := w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite (tests) has no row locks; its single-writer model
		// covers the same window.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var products []models.Product
		if err := q.Where("product_id IN ?", cart.ProductIDs(c)).Find(&products).Error; err != nil {
			return err
		}
		snapshot := make(map[uint]models.Product, len(products))
		for _, p := range products {
			snapshot[p.ID] = p
		}

		// Same pricing path the cart page uses; no divergent math.
		summary := cart.Summarize(c, snapshot)
		if len(summary.Lines) == 0 {
			return ErrEmptyCart
		}

		for _, line := range summary.Lines {
			if line.Qty > line.Product.Stock {
				return fmt.Errorf("%w: %s", ErrOutOfStock, line.Product.Name)
			}
		}
		for _, line := range summary.Lines {
			if err := tx.Model(&models.Product{}).
				Where("product_id = ?", line.Product.ID).
				Update("stock", gorm.Expr("stock - ?", line.Qty)).Error; err != nil {
				return err
			}
		}

		header = models.Order{
			UserID:          userID,
			DeliveryName:    d.Name,
			DeliveryAddress: d.Address,
			City:            d.City,
			Pincode:         d.Pincode,
			Phone:           d.Phone,
			Instructions:    d.Instructions,
			PaymentMethod:   d.PaymentMethod,
			OrderDate:       time.Now(),
			Status:          models.OrderStatusProcessing,
			Subtotal:        summary.Subtotal,
			DeliveryFee:     summary.DeliveryFee,
			Discount:        summary.Discount,
			Total:           summary.Total,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		items = make([]models.OrderItem, 0, len(summary.Lines))
		for _, line := range summary.Lines {
			item := models.OrderItem{
				OrderID:   header.ID,
				ProductID: line.Product.ID,
				Qty:       line.Qty,
				Price:     line.Product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &header, items, nil
}

// Recent returns the newest orders for one user, for the dashboard window.
func (w *Writer) Recent(ctx context.Context, userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := w.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
