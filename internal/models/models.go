package models

// Request is a sanitized service request submitted from the public form.
// Comment is the only field that may be empty.
type Request struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Car     string `json:"car"`
	Service string `json:"service"`
	Comment string `json:"comment,omitempty"`
}

// Service is one row of the public services listing. BasePrice stays textual
// so decimal prices survive serialization without precision loss.
type Service struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	BasePrice       string `json:"base_price"`
}
