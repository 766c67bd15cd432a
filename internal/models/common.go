// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Search modes accepted by the catalog search.
type SearchMode string

const (
	SearchAll       SearchMode = "all"
	SearchSize      SearchMode = "size"
	SearchSeason    SearchMode = "season"
	SearchGender    SearchMode = "gender"
	SearchPrice     SearchMode = "price"
	SearchProductID SearchMode = "product_id"
)

func (m SearchMode) Valid() bool {
	switch m {
	case SearchAll, SearchSize, SearchSeason, SearchGender, SearchPrice, SearchProductID:
		return true
	}
	return false
}
