package types

import "strings"

// Address is the shipping destination captured during checkout. It is stored
// as jsonb on orders and as a plain JSON record in session state.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// Complete reports whether every required field is non-empty.
func (a Address) Complete() bool {
	for _, field := range []string{a.Line1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
