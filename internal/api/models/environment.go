package models

import "time"

// Environment holds the base URL, variables and default headers a test case
// is executed against.
type Environment struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `json:"name"`
	BaseURL   string            `json:"baseUrl"`
	Variables map[string]any    `gorm:"serializer:json" json:"variables"`
	Headers   map[string]string `gorm:"serializer:json" json:"headers"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
