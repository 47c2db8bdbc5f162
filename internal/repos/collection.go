package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/types"
)

type CollectionRepo interface {
	// ListWithTenants returns every collection joined with its owning
	// tenant, ordered by tenant code ascending and then by storage
	// (insertion) order within a tenant.
	ListWithTenants(ctx context.Context) ([]*types.Collection, error)
	GetByTenantAndCode(ctx context.Context, tenantCode, code string) (*types.Collection, error)
	GetByURI(ctx context.Context, uri string) (*types.Collection, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{db: db, log: baseLog.With("repo", "CollectionRepo")}
}

func (r *collectionRepo) ListWithTenants(ctx context.Context) ([]*types.Collection, error) {
	var collections []*types.Collection
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Order("tenant_code ASC, created_at ASC").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepo) GetByTenantAndCode(ctx context.Context, tenantCode, code string) (*types.Collection, error) {
	var collection types.Collection
	err := r.db.WithContext(ctx).
		Where("tenant_code = ? AND code = ?", tenantCode, code).
		First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("collection %s:%s: %w", tenantCode, code, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepo) GetByURI(ctx context.Context, uri string) (*types.Collection, error) {
	var collection types.Collection
	err := r.db.WithContext(ctx).Where("uri = ?", uri).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("collection %s: %w", uri, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}
