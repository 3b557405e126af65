package model

import "time"

// Item represents one inventory record. ID and Code are assigned at creation
// and never change; Sold and PaymentReceived are independent flags.
type Item struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location"`
	Description     string    `json:"description,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Code            string    `json:"code"`
	Price           float64   `json:"price"`
	Sold            bool      `json:"sold"`
	PaymentReceived bool      `json:"paymentReceived"`
	CreatedAt       time.Time `json:"created_at"`
}
