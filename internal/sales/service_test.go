package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(db.NewFromConn(conn), NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, companyID uuid.UUID, serial string, months int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                   uuid.New(),
		CompanyID:            companyID,
		Name:                 "Test Unit",
		SerialNumber:         serial,
		ModelNumber:          "TU-1",
		PurchasePrice:        decimal.NewFromInt(100),
		ManufactureDate:      types.NewDate(2024, time.January, 1),
		WarrantyPeriodMonths: months,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestCreateSaleFreezesWarrantyWindow(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	product := mustCreateProduct(t, conn, companyID, "SN-WINDOW", 12)

	created, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "  Jordan Reyes  ",
		SaleDate:     types.NewDate(2024, time.May, 10),
	})
	require.NoError(t, err)
	require.Equal(t, "Jordan Reyes", created.CustomerName)
	require.Equal(t, types.NewDate(2024, time.May, 10), created.WarrantyStartDate)
	require.Equal(t, types.NewDate(2025, time.May, 10), created.WarrantyEndDate)
	require.Nil(t, created.DistributorID, "company-registered sale carries no distributor")
	require.Equal(t, product.Name, created.ProductName)
	require.Equal(t, product.SerialNumber, created.SerialNumber)
}

func TestCreateSaleRollsOverShortMonths(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	product := mustCreateProduct(t, conn, companyID, "SN-ROLLOVER", 1)

	created, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "Sam Okafor",
		SaleDate:     types.NewDate(2024, time.January, 31),
	})
	require.NoError(t, err)
	require.Equal(t, types.NewDate(2024, time.March, 2), created.WarrantyEndDate)
}

func TestCreateSaleByAssignedDistributor(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	distributorID := uuid.New()

	product := mustCreateProduct(t, conn, companyID, "SN-DIST", 12)
	product.AssignedDistributorID = &distributorID
	require.NoError(t, conn.Save(product).Error)

	created, err := svc.Create(context.Background(), distributorID, enums.UserRoleDistributor, CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "Robin Vega",
		SaleDate:     types.NewDate(2024, time.June, 1),
	})
	require.NoError(t, err)
	require.NotNil(t, created.DistributorID)
	require.Equal(t, distributorID, *created.DistributorID)
}

func TestCreateSaleHidesForeignProducts(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	product := mustCreateProduct(t, conn, uuid.New(), "SN-FOREIGN", 12)

	input := CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "Nia Holt",
		SaleDate:     types.NewDate(2024, time.June, 1),
	}

	_, err := svc.Create(context.Background(), uuid.New(), enums.UserRoleCompany, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code(), "foreign company sees not found, not forbidden")

	_, err = svc.Create(context.Background(), uuid.New(), enums.UserRoleDistributor, input)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code(), "unassigned distributor sees not found")
}

func TestCreateSaleRejectsActiveCoverage(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	product := mustCreateProduct(t, conn, companyID, "SN-COVERED", 12)

	_, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "First Buyer",
		SaleDate:     types.NewDate(2024, time.March, 1),
	})
	require.NoError(t, err)

	conflictDates := []types.Date{
		types.NewDate(2024, time.August, 15),
		types.NewDate(2025, time.March, 1),
	}
	for _, date := range conflictDates {
		_, err = svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
			ProductID:    product.ID,
			CustomerName: "Second Buyer",
			SaleDate:     date,
		})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "sale dated %s must be rejected", date)
		require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	}

	resold, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "Second Buyer",
		SaleDate:     types.NewDate(2025, time.March, 2),
	})
	require.NoError(t, err, "re-sale after the window closes is allowed")
	require.Equal(t, types.NewDate(2026, time.March, 2), resold.WarrantyEndDate)
}

func TestCreateSaleDoubleRegistrationPersistsOneRow(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	product := mustCreateProduct(t, conn, companyID, "SN-DOUBLE", 12)

	input := CreateSaleInput{
		ProductID:    product.ID,
		CustomerName: "First Buyer",
		SaleDate:     types.NewDate(2024, time.April, 1),
	}

	_, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, input)
	require.NoError(t, err)

	// A second registration for the same date arrives once the first has
	// committed; the locked product load makes it see the new sale.
	input.CustomerName = "Second Buyer"
	_, err = svc.Create(context.Background(), companyID, enums.UserRoleCompany, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	var count int64
	require.NoError(t, conn.Model(&models.Sale{}).Where("product_id = ?", product.ID).Count(&count).Error)
	require.EqualValues(t, 1, count, "only the first registration may persist")
}

func TestCreateSaleValidation(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	product := mustCreateProduct(t, conn, companyID, "SN-VALID", 12)

	cases := []struct {
		name  string
		input CreateSaleInput
	}{
		{
			name:  "missing product id",
			input: CreateSaleInput{CustomerName: "A", SaleDate: types.NewDate(2024, time.June, 1)},
		},
		{
			name:  "blank customer name",
			input: CreateSaleInput{ProductID: product.ID, CustomerName: "   ", SaleDate: types.NewDate(2024, time.June, 1)},
		},
		{
			name:  "missing sale date",
			input: CreateSaleInput{ProductID: product.ID, CustomerName: "A"},
		},
		{
			name:  "sale before manufacture",
			input: CreateSaleInput{ProductID: product.ID, CustomerName: "A", SaleDate: types.NewDate(2023, time.December, 31)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestListScopesByCompanyAndDistributor(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()
	otherCompany := uuid.New()
	distributorID := uuid.New()

	owned := mustCreateProduct(t, conn, companyID, "SN-LIST-A", 12)
	owned.AssignedDistributorID = &distributorID
	require.NoError(t, conn.Save(owned).Error)
	foreign := mustCreateProduct(t, conn, otherCompany, "SN-LIST-B", 12)

	_, err := svc.Create(context.Background(), distributorID, enums.UserRoleDistributor, CreateSaleInput{
		ProductID:    owned.ID,
		CustomerName: "Channel Sale",
		SaleDate:     types.NewDate(2024, time.April, 1),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), otherCompany, enums.UserRoleCompany, CreateSaleInput{
		ProductID:    foreign.ID,
		CustomerName: "Other Sale",
		SaleDate:     types.NewDate(2024, time.April, 2),
	})
	require.NoError(t, err)

	companyPage, err := svc.ListForCompany(context.Background(), companyID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, companyPage.Sales, 1, "company sees sales of its own products only")
	require.Equal(t, "Channel Sale", companyPage.Sales[0].CustomerName)
	require.Equal(t, owned.Name, companyPage.Sales[0].ProductName)

	distributorPage, err := svc.ListForDistributor(context.Background(), distributorID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, distributorPage.Sales, 1)
	require.Equal(t, "Channel Sale", distributorPage.Sales[0].CustomerName)

	strangerPage, err := svc.ListForDistributor(context.Background(), uuid.New(), pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, strangerPage.Sales)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn)
	companyID := uuid.New()

	for i := 0; i < 5; i++ {
		product := mustCreateProduct(t, conn, companyID, fmt.Sprintf("SN-PAGE-%d", i), 12)
		_, err := svc.Create(context.Background(), companyID, enums.UserRoleCompany, CreateSaleInput{
			ProductID:    product.ID,
			CustomerName: fmt.Sprintf("Buyer %d", i),
			SaleDate:     types.NewDate(2024, time.April, 1),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListForCompany(context.Background(), companyID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Sales, 3)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListForCompany(context.Background(), companyID, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Sales, 2)
	require.Empty(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, dto := range append(page.Sales, rest.Sales...) {
		require.False(t, seen[dto.ID], "duplicate sale across pages")
		seen[dto.ID] = true
	}
}
