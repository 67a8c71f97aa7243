package database

import (
	"database/sql/driver"
	"fmt"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
	"github.com/shopspring/decimal"
)

// Decimal is a wrapper for shopspring.Decimal with DB compatibility.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal converts a float to a Decimal rounded to places fractional digits,
// matching the precision of the NUMERIC column it is written to.
func NewDecimal(value float64, places int32) Decimal {
	return Decimal{Decimal: utils.FloatToDecimal(value).Round(places)}
}

// Float64 returns the nearest float64 value.
func (d Decimal) Float64() float64 {
	f, _ := d.Decimal.Float64()
	return f
}

// Value implements the driver.Valuer interface for database serialization.
func (d Decimal) Value() (driver.Value, error) {
	return d.Decimal.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (d *Decimal) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		dec, err := decimal.NewFromString(string(v))
		if err != nil {
			return err
		}
		d.Decimal = dec
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		d.Decimal = dec
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	case int64:
		d.Decimal = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("cannot scan decimal value: %v", value)
	}
	return nil
}
