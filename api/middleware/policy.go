package middleware

import (
	"net/http"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
)

// Resource names an API surface gated by the policy table.
type Resource string

const (
	ResourceProducts     Resource = "products"
	ResourceDistributors Resource = "distributors"
	ResourceSales        Resource = "sales"
	ResourceMedia        Resource = "media"
	ResourceUsers        Resource = "users"
)

// Action is an operation performed against a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PolicyTable maps role and resource to the set of permitted actions. Absent
// entries deny; there is no wildcard and no ordering sensitivity, so the whole
// authorization surface is auditable in one literal.
type PolicyTable map[enums.UserRole]map[Resource]map[Action]bool

// DefaultPolicyTable returns the shipped authorization matrix. Companies manage
// their catalog and distributor roster; distributors only see assigned products
// and register sales. Sales have no update action anywhere: they are immutable.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{
		enums.UserRoleCompany: {
			ResourceProducts:     {ActionRead: true, ActionCreate: true, ActionUpdate: true},
			ResourceDistributors: {ActionRead: true, ActionCreate: true, ActionUpdate: true},
			ResourceSales:        {ActionRead: true, ActionCreate: true},
			ResourceMedia:        {ActionRead: true, ActionCreate: true, ActionDelete: true},
			ResourceUsers:        {ActionRead: true},
		},
		enums.UserRoleDistributor: {
			ResourceProducts: {ActionRead: true},
			ResourceSales:    {ActionRead: true, ActionCreate: true},
			ResourceMedia:    {ActionRead: true, ActionCreate: true, ActionDelete: true},
			ResourceUsers:    {ActionRead: true},
		},
	}
}

// Allows reports whether the role may perform the action on the resource.
func (t PolicyTable) Allows(role enums.UserRole, resource Resource, action Action) bool {
	byResource, ok := t[role]
	if !ok {
		return false
	}
	actions, ok := byResource[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// Authorize gates a route group on a single policy table entry. The role comes
// from the authenticated request context, so Auth must run first.
func Authorize(table PolicyTable, resource Resource, action Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseUserRole(RoleFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role"))
				return
			}
			if !table.Allows(role, resource, action) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operation not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
