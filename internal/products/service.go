package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
)

// Service exposes company product management and distributor read access.
type Service interface {
	CreateProduct(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, actorID uuid.UUID, role enums.UserRole, productID uuid.UUID) (*ProductDTO, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, query string, limit int, cursor string) (*ProductListResult, error)
	ListForDistributor(ctx context.Context, distributorID uuid.UUID, query string, limit int, cursor string) (*ProductListResult, error)
}

type distributorReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Distributor, error)
}

type mediaReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type service struct {
	repo            *Repository
	distributorRepo distributorReader
	mediaRepo       mediaReader
}

// NewService constructs a product service instance.
func NewService(repo *Repository, distributorRepo distributorReader, mediaRepo mediaReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if distributorRepo == nil {
		return nil, fmt.Errorf("distributor repository required")
	}
	if mediaRepo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	return &service{
		repo:            repo,
		distributorRepo: distributorRepo,
		mediaRepo:       mediaRepo,
	}, nil
}

// CreateProduct registers a unit under the acting company.
func (s *service) CreateProduct(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	if input.AssignedDistributorID != nil {
		if err := s.ensureDistributorBelongsTo(ctx, companyID, *input.AssignedDistributorID); err != nil {
			return nil, err
		}
	}
	if input.ImageMediaID != nil {
		if err := s.ensureUsableImage(ctx, companyID, *input.ImageMediaID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		CompanyID:             companyID,
		Name:                  strings.TrimSpace(input.Name),
		SerialNumber:          strings.TrimSpace(input.SerialNumber),
		ModelNumber:           strings.TrimSpace(input.ModelNumber),
		PurchasePrice:         input.PurchasePrice,
		ManufactureDate:       input.ManufactureDate,
		WarrantyPeriodMonths:  input.WarrantyPeriodMonths,
		AssignedDistributorID: input.AssignedDistributorID,
		ImageMediaID:          input.ImageMediaID,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	return toDTO(created), nil
}

// UpdateProduct mutates a product owned by the acting company. The serial
// number never changes after registration.
func (s *service) UpdateProduct(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwnedProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.ModelNumber != nil {
		model := strings.TrimSpace(*input.ModelNumber)
		if model == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model number cannot be empty")
		}
		product.ModelNumber = model
	}
	if input.PurchasePrice != nil {
		if input.PurchasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
		}
		product.PurchasePrice = *input.PurchasePrice
	}
	if input.ManufactureDate != nil {
		product.ManufactureDate = *input.ManufactureDate
	}
	if input.WarrantyPeriodMonths != nil {
		if *input.WarrantyPeriodMonths < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "warranty period must be a non-negative month count")
		}
		product.WarrantyPeriodMonths = *input.WarrantyPeriodMonths
	}

	switch {
	case input.ClearDistributor:
		product.AssignedDistributorID = nil
	case input.AssignedDistributorID != nil:
		if err := s.ensureDistributorBelongsTo(ctx, companyID, *input.AssignedDistributorID); err != nil {
			return nil, err
		}
		product.AssignedDistributorID = input.AssignedDistributorID
	}

	if input.ImageMediaID != nil {
		if err := s.ensureUsableImage(ctx, companyID, *input.ImageMediaID); err != nil {
			return nil, err
		}
		product.ImageMediaID = input.ImageMediaID
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	return toDTO(updated), nil
}

// GetProduct loads one product visible to the actor. Companies see their own
// catalog; distributors only units assigned to them.
func (s *service) GetProduct(ctx context.Context, actorID uuid.UUID, role enums.UserRole, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	switch role {
	case enums.UserRoleCompany:
		if product.CompanyID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	case enums.UserRoleDistributor:
		if product.AssignedDistributorID == nil || *product.AssignedDistributorID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}

	return toDTO(product), nil
}

// ListForCompany pages through the company's full catalog.
func (s *service) ListForCompany(ctx context.Context, companyID uuid.UUID, query string, limit int, cursor string) (*ProductListResult, error) {
	input := ListProductsInput{
		CompanyID: &companyID,
		Query:     query,
	}
	input.Pagination.Limit = limit
	input.Pagination.Cursor = cursor
	return s.repo.List(ctx, input)
}

// ListForDistributor pages through units assigned to the distributor.
func (s *service) ListForDistributor(ctx context.Context, distributorID uuid.UUID, query string, limit int, cursor string) (*ProductListResult, error) {
	input := ListProductsInput{
		DistributorID: &distributorID,
		Query:         query,
	}
	input.Pagination.Limit = limit
	input.Pagination.Cursor = cursor
	return s.repo.List(ctx, input)
}

func (s *service) loadOwnedProduct(ctx context.Context, companyID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ensureDistributorBelongsTo(ctx context.Context, companyID, distributorID uuid.UUID) error {
	distributor, err := s.distributorRepo.FindByID(ctx, distributorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "assigned distributor does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load distributor")
	}
	if distributor.CompanyID != companyID {
		return pkgerrors.New(pkgerrors.CodeValidation, "assigned distributor belongs to another company")
	}
	return nil
}

func (s *service) ensureUsableImage(ctx context.Context, companyID, mediaID uuid.UUID) error {
	media, err := s.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "image media does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load media")
	}
	if media.OwnerUserID != companyID {
		return pkgerrors.New(pkgerrors.CodeValidation, "image media belongs to another account")
	}
	if media.Kind != enums.MediaKindProductImage {
		return pkgerrors.New(pkgerrors.CodeValidation, "media is not a product image")
	}
	if media.Status != enums.MediaStatusReady {
		return pkgerrors.New(pkgerrors.CodeValidation, "image upload is not finalized")
	}
	return nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.SerialNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "serial number is required")
	}
	if strings.TrimSpace(input.ModelNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "model number is required")
	}
	if input.PurchasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
	}
	if input.ManufactureDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "manufacture date is required")
	}
	if input.WarrantyPeriodMonths < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "warranty period must be a non-negative month count")
	}
	return nil
}
