package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/types"
)

func newTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.Tenant{}, &types.Collection{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return gdb, log
}

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewRandom()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	return id
}

func seedRegistry(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	tenants := []*types.Tenant{
		{Code: "beta", Name: "Beta Institute", EnableNotation: true},
		{Code: "acme", Name: "Acme Corp", EnableNotation: true},
	}
	if err := gdb.Create(&tenants).Error; err != nil {
		t.Fatalf("seed tenants: %v", err)
	}
	collections := []*types.Collection{
		{ID: newUUID(t), Code: "terms", Title: "Terms", URI: "http://acme.example.org/terms", TenantCode: "acme"},
		{ID: newUUID(t), Code: "topics", Title: "Topics", URI: "http://beta.example.org/topics", TenantCode: "beta"},
	}
	for _, c := range collections {
		if err := gdb.Create(c).Error; err != nil {
			t.Fatalf("seed collection %s: %v", c.Code, err)
		}
	}
}

func TestListWithTenantsOrder(t *testing.T) {
	gdb, log := newTestDB(t)
	seedRegistry(t, gdb)

	repo := NewCollectionRepo(gdb, log)
	collections, err := repo.ListWithTenants(context.Background())
	if err != nil {
		t.Fatalf("ListWithTenants: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("collections: want=2 got=%d", len(collections))
	}
	if collections[0].TenantCode != "acme" || collections[1].TenantCode != "beta" {
		t.Fatalf("tenant order: got=%s,%s", collections[0].TenantCode, collections[1].TenantCode)
	}
	if collections[0].Tenant == nil || collections[0].Tenant.Name != "Acme Corp" {
		t.Fatalf("tenant not preloaded: got=%+v", collections[0].Tenant)
	}
}

func TestGetByTenantAndCode(t *testing.T) {
	gdb, log := newTestDB(t)
	seedRegistry(t, gdb)

	repo := NewCollectionRepo(gdb, log)
	col, err := repo.GetByTenantAndCode(context.Background(), "acme", "terms")
	if err != nil {
		t.Fatalf("GetByTenantAndCode: %v", err)
	}
	if col.URI != "http://acme.example.org/terms" {
		t.Fatalf("uri: got=%s", col.URI)
	}

	_, err = repo.GetByTenantAndCode(context.Background(), "acme", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing collection: want=ErrNotFound got=%v", err)
	}
}

func TestTenantList(t *testing.T) {
	gdb, log := newTestDB(t)
	seedRegistry(t, gdb)

	repo := NewTenantRepo(gdb, log)
	tenants, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tenants) != 2 || tenants[0].Code != "acme" || tenants[1].Code != "beta" {
		t.Fatalf("tenant order: got=%v", tenants)
	}
}
