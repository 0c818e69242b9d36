package store

import "net/url"

// Product is something for sale.
type Product struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
	Cost  float64 `json:"cost" api:"internal"`
	Notes string  `json:"notes" yaml:"-"`
}

// Order collects products.
type Order struct {
	ID      int64
	Lines   []*Product
	Receipt *url.URL
}

// NewOrder starts an order.
func NewOrder(id int64, lines ...*Product) *Order { return &Order{ID: id, Lines: lines} }

// Total sums the line prices.
func (o *Order) Total() float64 {
	var sum float64
	for _, l := range o.Lines {
		sum += l.Price
	}
	return sum
}

// LegacyCart predates Order.
//
// Deprecated: use Order.
type LegacyCart struct {
	Items []Product
}
