package service

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// OutOfStock is the stock label shown for a product with zero quantity.
const OutOfStock = "Out of stock"

// PriceLabel formats a price in dollars rounded to two decimal places, e.g. 0.5 -> "$0.50".
func PriceLabel(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}

// StockLabel returns the quantity as text, or OutOfStock when nothing is left.
func StockLabel(quantity int) string {
	if quantity == 0 {
		return OutOfStock
	}
	return strconv.Itoa(quantity)
}
