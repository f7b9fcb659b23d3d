// Package validation collects field-level input violations before any I/O.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a short machine-readable violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a violation, keeping the first one reported per field.
func (v Violations) Add(field, code string) {
	if _, dup := v[field]; !dup {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

func RangeDecimal(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v.Add(field, "out_of_range")
	}
}
