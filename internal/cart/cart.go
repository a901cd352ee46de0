// Package cart is the in-session cart engine: line mutation and pricing.
// It owns no storage and no transport, so the HTTP handlers and the order
// writer share the exact same pricing path.
package cart

import "github.com/trishadairy/storefront/internal/models"

const (
	// DeliveryFee is charged flat on every non-empty order.
	DeliveryFee = 25.0
	// DiscountThreshold and DiscountAmount encode the storefront's
	// "free delivery over 100" rule: a flat cut once the subtotal
	// crosses the threshold, nothing proportional.
	DiscountThreshold = 100.0
	DiscountAmount    = 25.0
)

type Line struct {
	ProductID uint `json:"product_id"`
	Qty       uint `json:"qty"`
}

// Cart is an ordered sequence of lines, at most one line per product id.
type Cart []Line

type SummaryLine struct {
	Product   models.Product `json:"product"`
	Qty       uint           `json:"qty"`
	LineTotal float64        `json:"line_total"`
}

type Summary struct {
	Lines       []SummaryLine `json:"lines"`
	Subtotal    float64       `json:"subtotal"`
	DeliveryFee float64       `json:"delivery_fee"`
	Discount    float64       `json:"discount"`
	Total       float64       `json:"total"`

	// Dropped lists product ids that were in the cart but missing from
	// the catalog snapshot. Callers purge them from the session cart.
	Dropped []uint `json:"-"`
}

// Add merges qty into an existing line for productID or appends a new one.
// Non-positive quantities are clamped to 1.
func Add(c Cart, productID uint, qty int) Cart {
	if qty < 1 {
		qty = 1
	}
	for i := range c {
		if c[i].ProductID == productID {
			c[i].Qty += uint(qty)
			return c
		}
	}
	return append(c, Line{ProductID: productID, Qty: uint(qty)})
}

// Step adjusts one line by a single unit. Decreasing at qty=1 is a no-op,
// never an auto-remove; so is stepping a product that is not in the cart.
func Step(c Cart, productID uint, increase bool) Cart {
	for i := range c {
		if c[i].ProductID != productID {
			continue
		}
		if increase {
			c[i].Qty++
		} else if c[i].Qty > 1 {
			c[i].Qty--
		}
		return c
	}
	return c
}

// Remove deletes the line for productID if present.
func Remove(c Cart, productID uint) Cart {
	for i := range c {
		if c[i].ProductID == productID {
			return append(c[:i], c[i+1:]...)
		}
	}
	return c
}

// Summarize prices the cart against a catalog snapshot. Lines whose product
// is no longer resolvable are dropped from the summary and reported in
// Dropped. An empty result carries zero totals, including the delivery fee.
func Summarize(c Cart, snapshot map[uint]models.Product) Summary {
	s := Summary{Lines: []SummaryLine{}}
	for _, line := range c {
		p, ok := snapshot[line.ProductID]
		if !ok {
			s.Dropped = append(s.Dropped, line.ProductID)
			continue
		}
		lineTotal := float64(line.Qty) * p.Price
		s.Lines = append(s.Lines, SummaryLine{Product: p, Qty: line.Qty, LineTotal: lineTotal})
		s.Subtotal += lineTotal
	}

	if len(s.Lines) == 0 {
		return s
	}

	s.DeliveryFee = DeliveryFee
	if s.Subtotal > DiscountThreshold {
		s.Discount = DiscountAmount
	}
	s.Total = s.Subtotal + s.DeliveryFee - s.Discount
	return s
}

// ProductIDs returns the distinct product ids in cart order, sized for a
// single batched catalog lookup per request.
func ProductIDs(c Cart) []uint {
	ids := make([]uint, 0, len(c))
	for _, line := range c {
		ids = append(ids, line.ProductID)
	}
	return ids
}
