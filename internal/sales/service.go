package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/internal/products"
	"github.com/coverline/coverline-backend/internal/warranty"
	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/pagination"
)

// Service registers sales and exposes scoped listings. Sale rows are
// append-only; there is no update or delete surface.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input CreateSaleInput) (*SaleDTO, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, page pagination.Params) (*SaleListResult, error)
	ListForDistributor(ctx context.Context, distributorID uuid.UUID, page pagination.Params) (*SaleListResult, error)
}

type service struct {
	db   *db.Client
	repo *Repository
}

// NewService constructs a sales service instance.
func NewService(dbClient *db.Client, repo *Repository) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{db: dbClient, repo: repo}, nil
}

// Create records the hand-off of a product to an end customer and freezes the
// warranty window on the row. The product row is locked for the duration of
// the transaction, so a concurrent registration for the same product waits on
// the lock and then sees the committed sale in its overlap check.
func (s *service) Create(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input CreateSaleInput) (*SaleDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var created *models.Sale
	var productName, serialNumber string

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := products.NewRepository(tx).FindByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		if err := authorizeSale(product, actorID, role); err != nil {
			return err
		}

		if input.SaleDate.Before(product.ManufactureDate) {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale date cannot precede the manufacture date")
		}

		for i := range product.Sales {
			if !input.SaleDate.After(product.Sales[i].WarrantyEndDate) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product is already covered by an active warranty")
			}
		}

		start, end, err := warranty.Window(input.SaleDate, product.WarrantyPeriodMonths)
		if err != nil {
			return err
		}

		sale := &models.Sale{
			ProductID:         product.ID,
			CustomerName:      strings.TrimSpace(input.CustomerName),
			CustomerEmail:     input.CustomerEmail,
			CustomerPhone:     input.CustomerPhone,
			SaleDate:          input.SaleDate,
			WarrantyStartDate: start,
			WarrantyEndDate:   end,
		}
		if role == enums.UserRoleDistributor {
			id := actorID
			sale.DistributorID = &id
		}

		created, err = NewRepository(tx).Create(ctx, sale)
		if err != nil {
			return err
		}

		productName = product.Name
		serialNumber = product.SerialNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SaleDTO{
		ID:                created.ID,
		ProductID:         created.ProductID,
		ProductName:       productName,
		SerialNumber:      serialNumber,
		DistributorID:     created.DistributorID,
		CustomerName:      created.CustomerName,
		CustomerEmail:     created.CustomerEmail,
		CustomerPhone:     created.CustomerPhone,
		SaleDate:          created.SaleDate,
		WarrantyStartDate: created.WarrantyStartDate,
		WarrantyEndDate:   created.WarrantyEndDate,
		CreatedAt:         created.CreatedAt,
	}, nil
}

// ListForCompany pages through sales of the company's products, including
// those registered by its distributors.
func (s *service) ListForCompany(ctx context.Context, companyID uuid.UUID, page pagination.Params) (*SaleListResult, error) {
	return s.repo.List(ctx, ListSalesInput{CompanyID: &companyID, Pagination: page})
}

// ListForDistributor pages through sales the distributor registered.
func (s *service) ListForDistributor(ctx context.Context, distributorID uuid.UUID, page pagination.Params) (*SaleListResult, error) {
	return s.repo.List(ctx, ListSalesInput{DistributorID: &distributorID, Pagination: page})
}

func authorizeSale(product *models.Product, actorID uuid.UUID, role enums.UserRole) error {
	switch role {
	case enums.UserRoleCompany:
		if product.CompanyID != actorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	case enums.UserRoleDistributor:
		if product.AssignedDistributorID == nil || *product.AssignedDistributorID != actorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
	return nil
}

func validateCreateInput(input CreateSaleInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.SaleDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale date is required")
	}
	if input.CustomerEmail != nil && strings.TrimSpace(*input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email cannot be blank")
	}
	return nil
}
