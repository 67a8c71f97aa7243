package utils

import (
	"github.com/shopspring/decimal"
)

// Safe float64 to decimal conversion
func FloatToDecimal(val float64) decimal.Decimal {
	return decimal.NewFromFloat(val)
}

// Safe decimal to float64 conversion (may lose precision!)
func DecimalToFloat(val decimal.Decimal) float64 {
	f, _ := val.Float64()
	return f
}

// RoundHalfUp rounds half away from zero on the decimal representation of val,
// so 0.125 becomes 0.13 instead of the binary-float 0.12.
func RoundHalfUp(val float64, places int32) float64 {
	return DecimalToFloat(FloatToDecimal(val).Round(places))
}
