package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection is a tenant-owned set of concepts. Its URI doubles as the
// openskos:set value stamped onto concepts.
type Collection struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"size:64;not null;index:idx_collection_tenant_code,unique,priority:2" json:"code"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	URI         string    `gorm:"uniqueIndex;not null" json:"uri"`
	TenantCode  string    `gorm:"size:64;not null;index:idx_collection_tenant_code,unique,priority:1" json:"tenant_code"`
	Tenant      *Tenant   `gorm:"constraint:OnDelete:CASCADE;foreignKey:TenantCode;references:Code" json:"tenant,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Collection) TableName() string { return "collection" }

func (c *Collection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
