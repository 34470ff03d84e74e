package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/api/middleware"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
)

// actorFromContext pulls the authenticated identity seeded by the auth
// middleware. Handlers behind that middleware can rely on both values.
func actorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	rawID := middleware.UserIDFromContext(ctx)
	if rawID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	actorID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown role")
	}
	return actorID, role, nil
}

func parsePathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
