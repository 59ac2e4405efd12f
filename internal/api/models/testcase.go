package models

import (
	"time"

	"apiflow/internal/scenario"
)

// TestCase is a stored scenario graph.
type TestCase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Graph       scenario.Graph `gorm:"serializer:json" json:"graph"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
