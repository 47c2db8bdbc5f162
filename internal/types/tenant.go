package types

import (
	"time"

	"github.com/vocnet/skos-backend/internal/skos"
)

// Tenant is an institution owning collections of concepts.
type Tenant struct {
	Code           string    `gorm:"primaryKey;size:64" json:"code"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `json:"email,omitempty"`
	EnableNotation bool      `gorm:"not null;default:true" json:"enable_notation"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenant" }

// Snapshot converts the registry row into the lifecycle engine's view.
func (t Tenant) Snapshot() skos.Tenant {
	return skos.Tenant{Code: t.Code, Name: t.Name, EnableNotation: t.EnableNotation}
}
