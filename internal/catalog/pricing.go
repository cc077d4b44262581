package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// EffectivePrice is price reduced by discountPercent, rounded to cents. It is
// computed for every response and never stored.
func EffectivePrice(price float64, discountPercent int) float64 {
	p := decimal.NewFromFloat(price)
	if HasDiscount(discountPercent) {
		keep := hundred.Sub(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
		p = p.Mul(keep)
	}
	f, _ := p.Round(2).Float64()
	return f
}

func HasDiscount(discountPercent int) bool {
	return discountPercent > 0
}
