package controllers

import (
	"net/http"
	"strings"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/api/validators"
	salesvc "github.com/coverline/coverline-backend/internal/sales"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

type createSaleRequest struct {
	ProductID     string     `json:"product_id" validate:"required,uuid"`
	CustomerName  string     `json:"customer_name" validate:"required"`
	CustomerEmail *string    `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
	SaleDate      types.Date `json:"sale_date" validate:"required"`
}

// CreateSale registers a hand-off to an end customer. Companies can sell any
// of their units; distributors only units assigned to them.
func CreateSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parsePathUUID(payload.ProductID, "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Create(r.Context(), actorID, role, salesvc.CreateSaleInput{
			ProductID:     productID,
			CustomerName:  payload.CustomerName,
			CustomerEmail: payload.CustomerEmail,
			CustomerPhone: payload.CustomerPhone,
			SaleDate:      payload.SaleDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// ListSales pages through sales scoped to the actor's role: companies see
// every sale of their products, distributors the sales they registered.
func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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
		page := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var result *salesvc.SaleListResult
		switch role {
		case enums.UserRoleCompany:
			result, err = svc.ListForCompany(r.Context(), actorID, page)
		case enums.UserRoleDistributor:
			result, err = svc.ListForDistributor(r.Context(), actorID, page)
		default:
			err = pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
