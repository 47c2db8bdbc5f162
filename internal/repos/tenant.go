package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/types"
)

// ErrNotFound is returned when a registry row does not exist.
var ErrNotFound = errors.New("repos: not found")

type TenantRepo interface {
	GetByCode(ctx context.Context, code string) (*types.Tenant, error)
	List(ctx context.Context) ([]*types.Tenant, error)
}

type tenantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTenantRepo(db *gorm.DB, baseLog *logger.Logger) TenantRepo {
	return &tenantRepo{db: db, log: baseLog.With("repo", "TenantRepo")}
}

func (r *tenantRepo) GetByCode(ctx context.Context, code string) (*types.Tenant, error) {
	var tenant types.Tenant
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tenant %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]*types.Tenant, error) {
	var tenants []*types.Tenant
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
