package controllers

import (
	"net/http"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/api/validators"
	warrantysvc "github.com/coverline/coverline-backend/internal/warranty"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
)

const maxIdentifierLength = 128

// PublicWarrantyCheck answers unauthenticated coverage lookups by serial or
// model number.
func PublicWarrantyCheck(svc warrantysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warranty service unavailable"))
			return
		}

		identifier := validators.SanitizeString(r.URL.Query().Get("identifier"), maxIdentifierLength)
		result, err := svc.Lookup(r.Context(), identifier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
