package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/bill-extraction/dto"
)

// identityKey deliberately leaves out the amount: duplicate detections of
// the same row often disagree only in the noisy amount column.
type identityKey struct {
	name     string
	rate     float64
	quantity float64
}

// ReconcileItems sums the amount of the first occurrence of every
// (name, rate, quantity) key, in the order given, and rounds the total to
// 2 decimal places half away from zero.
func ReconcileItems(items []dto.LineItem) float64 {
	seen := make(map[identityKey]struct{}, len(items))
	total := decimal.Zero

	for _, item := range items {
		key := identityKey{name: item.Name, rate: item.Rate, quantity: item.Quantity}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}

	return total.Round(2).InexactFloat64()
}
