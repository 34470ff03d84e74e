package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/api/validators"
	productsvc "github.com/coverline/coverline-backend/internal/products"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

type createProductRequest struct {
	Name                  string     `json:"name" validate:"required"`
	SerialNumber          string     `json:"serial_number" validate:"required"`
	ModelNumber           string     `json:"model_number" validate:"required"`
	PurchasePrice         string     `json:"purchase_price" validate:"required"`
	ManufactureDate       types.Date `json:"manufacture_date" validate:"required"`
	WarrantyPeriodMonths  *int       `json:"warranty_period_months" validate:"required,min=0"`
	AssignedDistributorID *string    `json:"assigned_distributor_id,omitempty" validate:"omitempty,uuid"`
	ImageMediaID          *string    `json:"image_media_id,omitempty" validate:"omitempty,uuid"`
}

type updateProductRequest struct {
	Name                  *string     `json:"name,omitempty"`
	ModelNumber           *string     `json:"model_number,omitempty"`
	PurchasePrice         *string     `json:"purchase_price,omitempty"`
	ManufactureDate       *types.Date `json:"manufacture_date,omitempty"`
	WarrantyPeriodMonths  *int        `json:"warranty_period_months,omitempty" validate:"omitempty,min=0"`
	AssignedDistributorID *string     `json:"assigned_distributor_id,omitempty" validate:"omitempty,uuid"`
	ClearDistributor      bool        `json:"clear_distributor,omitempty"`
	ImageMediaID          *string     `json:"image_media_id,omitempty" validate:"omitempty,uuid"`
}

// CreateProduct registers a unit under the authenticated company.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct mutates a product owned by the authenticated company.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parsePathUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actorID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// GetProduct loads one product visible to the actor.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parsePathUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), actorID, role, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts pages through the catalog scoped to the actor's role:
// companies see their registered units, distributors the units assigned to
// them.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
		search := validators.SanitizeString(r.URL.Query().Get("q"), maxIdentifierLength)

		var page *productsvc.ProductListResult
		switch role {
		case enums.UserRoleCompany:
			page, err = svc.ListForCompany(r.Context(), actorID, search, limit, cursor)
		case enums.UserRoleDistributor:
			page, err = svc.ListForDistributor(r.Context(), actorID, search, limit, cursor)
		default:
			err = pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func (req createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.PurchasePrice))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase price")
	}

	distributorID, err := parseOptionalUUID(req.AssignedDistributorID, "assigned distributor id")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	mediaID, err := parseOptionalUUID(req.ImageMediaID, "image media id")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	return productsvc.CreateProductInput{
		Name:                  strings.TrimSpace(req.Name),
		SerialNumber:          strings.TrimSpace(req.SerialNumber),
		ModelNumber:           strings.TrimSpace(req.ModelNumber),
		PurchasePrice:         price,
		ManufactureDate:       req.ManufactureDate,
		WarrantyPeriodMonths:  *req.WarrantyPeriodMonths,
		AssignedDistributorID: distributorID,
		ImageMediaID:          mediaID,
	}, nil
}

func (req updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:                 req.Name,
		ModelNumber:          req.ModelNumber,
		ManufactureDate:      req.ManufactureDate,
		WarrantyPeriodMonths: req.WarrantyPeriodMonths,
		ClearDistributor:     req.ClearDistributor,
	}

	if req.PurchasePrice != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.PurchasePrice))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase price")
		}
		input.PurchasePrice = &price
	}

	distributorID, err := parseOptionalUUID(req.AssignedDistributorID, "assigned distributor id")
	if err != nil {
		return productsvc.UpdateProductInput{}, err
	}
	input.AssignedDistributorID = distributorID

	mediaID, err := parseOptionalUUID(req.ImageMediaID, "image media id")
	if err != nil {
		return productsvc.UpdateProductInput{}, err
	}
	input.ImageMediaID = mediaID

	return input, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &parsed, nil
}
