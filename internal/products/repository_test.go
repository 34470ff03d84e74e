package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/types"
)

func mustCreateProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, serial string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                   uuid.New(),
		CompanyID:            companyID,
		Name:                 "Test Unit",
		SerialNumber:         serial,
		ModelNumber:          "TU-1",
		PurchasePrice:        decimal.NewFromInt(100),
		ManufactureDate:      types.NewDate(2024, time.March, 1),
		WarrantyPeriodMonths: 12,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestCreateProductDuplicateSerialIsConflict(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewRepository(db)
	companyID := uuid.New()

	mustCreateProduct(t, db, companyID, "SN-DUP")

	_, err := repo.CreateProduct(context.Background(), &models.Product{
		CompanyID:            companyID,
		Name:                 "Clone",
		SerialNumber:         "SN-DUP",
		ModelNumber:          "TU-1",
		PurchasePrice:        decimal.NewFromInt(100),
		ManufactureDate:      types.NewDate(2024, time.March, 1),
		WarrantyPeriodMonths: 12,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestListScopesAndPaginates(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewRepository(db)
	companyID := uuid.New()
	otherCompany := uuid.New()

	for i := 0; i < 5; i++ {
		mustCreateProduct(t, db, companyID, fmt.Sprintf("SN-A-%d", i))
	}
	mustCreateProduct(t, db, otherCompany, "SN-B-0")

	query := ListProductsInput{CompanyID: &companyID}
	query.Pagination.Limit = 3

	page, err := repo.List(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, page.Products, 3)
	require.NotEmpty(t, page.NextCursor)

	query.Pagination.Cursor = page.NextCursor
	rest, err := repo.List(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, rest.Products, 2)
	require.Empty(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, dto := range append(page.Products, rest.Products...) {
		require.False(t, seen[dto.ID], "duplicate product across pages")
		seen[dto.ID] = true
	}
}

func TestListFiltersByDistributorAndSearch(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewRepository(db)
	companyID := uuid.New()
	distributorID := uuid.New()

	assigned := mustCreateProduct(t, db, companyID, "SN-ASSIGNED")
	assigned.AssignedDistributorID = &distributorID
	require.NoError(t, db.Save(assigned).Error)
	mustCreateProduct(t, db, companyID, "SN-UNASSIGNED")

	byDistributor := ListProductsInput{DistributorID: &distributorID}
	page, err := repo.List(context.Background(), byDistributor)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	require.Equal(t, assigned.ID, page.Products[0].ID)

	bySearch := ListProductsInput{CompanyID: &companyID, Query: "unassigned"}
	page, err = repo.List(context.Background(), bySearch)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	require.Equal(t, "SN-UNASSIGNED", page.Products[0].SerialNumber)
}

func TestFindByIDPreloadsSale(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewRepository(db)
	companyID := uuid.New()

	product := mustCreateProduct(t, db, companyID, "SN-SOLD")
	sale := &models.Sale{
		ID:                uuid.New(),
		ProductID:         product.ID,
		CustomerName:      "Casey Lane",
		SaleDate:          types.NewDate(2024, time.April, 1),
		WarrantyStartDate: types.NewDate(2024, time.April, 1),
		WarrantyEndDate:   types.NewDate(2025, time.April, 1),
	}
	require.NoError(t, db.Create(sale).Error)

	loaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Sales, 1)
	require.Equal(t, "Casey Lane", loaded.Sales[0].CustomerName)
}
