package api

import "strings"

// Policy controls how strictly item input is validated at the HTTP
// boundary. Missing required fields are always rejected; strict mode
// additionally rejects blank names and locations and negative prices,
// while lenient mode accepts them the way the permissive legacy flows did.
type Policy struct {
	Strict bool
}

// checkText validates a required text field. It returns an error message,
// or "" if the value is acceptable.
func (p Policy) checkText(field, value string) string {
	if p.Strict && strings.TrimSpace(value) == "" {
		return field + " must not be blank"
	}
	return ""
}

// checkPrice validates a price value. It returns an error message, or ""
// if the value is acceptable.
func (p Policy) checkPrice(price float64) string {
	if p.Strict && price < 0 {
		return "price must not be negative"
	}
	return ""
}
