package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/api/validators"
	distributorsvc "github.com/coverline/coverline-backend/internal/distributors"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/pagination"
)

type createDistributorRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type updateDistributorRequest struct {
	Name *string `json:"name,omitempty"`
}

// CreateDistributor onboards a distributor account under the authenticated
// company and emails the password setup invite.
func CreateDistributor(svc distributorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distributor service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createDistributorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributor, err := svc.Onboard(r.Context(), actorID, distributorsvc.CreateDistributorInput{
			Name:  payload.Name,
			Email: payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, distributor)
	}
}

// ResendDistributorInvite issues a fresh password setup email.
func ResendDistributorInvite(svc distributorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distributor service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributorID, err := parsePathUUID(chi.URLParam(r, "distributorId"), "distributor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ResendInvite(r.Context(), actorID, distributorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "invite_sent"})
	}
}

// UpdateDistributor mutates a distributor profile owned by the company.
func UpdateDistributor(svc distributorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distributor service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributorID, err := parsePathUUID(chi.URLParam(r, "distributorId"), "distributor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDistributorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributor, err := svc.Update(r.Context(), actorID, distributorID, distributorsvc.UpdateDistributorInput{
			Name: payload.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, distributor)
	}
}

// GetDistributor loads a distributor owned by the company.
func GetDistributor(svc distributorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distributor service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributorID, err := parsePathUUID(chi.URLParam(r, "distributorId"), "distributor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributor, err := svc.Get(r.Context(), actorID, distributorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, distributor)
	}
}

// ListDistributors pages through the company's roster.
func ListDistributors(svc distributorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distributor service unavailable"))
			return
		}

		actorID, _, err := actorFromContext(r.Context())
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

		page, err := svc.List(r.Context(), actorID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
