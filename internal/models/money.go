package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount the way a DECIMAL(10,2) column reads back,
// always with two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// The shallower Price fields below shadow the embedded decimals.

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(p), FormatMoney(p.Price)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"totalAmount"`
	}{plain(o), FormatMoney(o.TotalAmount)})
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type plain OrderItem
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(i), FormatMoney(i.Price)})
}
