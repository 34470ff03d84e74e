package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coverline/coverline-backend/pkg/enums"
)

func TestDefaultPolicyTable(t *testing.T) {
	table := DefaultPolicyTable()

	cases := []struct {
		name     string
		role     enums.UserRole
		resource Resource
		action   Action
		want     bool
	}{
		{"company creates products", enums.UserRoleCompany, ResourceProducts, ActionCreate, true},
		{"company updates products", enums.UserRoleCompany, ResourceProducts, ActionUpdate, true},
		{"company onboards distributors", enums.UserRoleCompany, ResourceDistributors, ActionCreate, true},
		{"company records direct sales", enums.UserRoleCompany, ResourceSales, ActionCreate, true},
		{"sales are immutable for companies", enums.UserRoleCompany, ResourceSales, ActionUpdate, false},
		{"distributor reads assigned products", enums.UserRoleDistributor, ResourceProducts, ActionRead, true},
		{"distributor cannot create products", enums.UserRoleDistributor, ResourceProducts, ActionCreate, false},
		{"distributor registers sales", enums.UserRoleDistributor, ResourceSales, ActionCreate, true},
		{"distributor cannot manage distributors", enums.UserRoleDistributor, ResourceDistributors, ActionRead, false},
		{"sales are immutable for distributors", enums.UserRoleDistributor, ResourceSales, ActionUpdate, false},
		{"company deletes media", enums.UserRoleCompany, ResourceMedia, ActionDelete, true},
		{"distributor deletes media", enums.UserRoleDistributor, ResourceMedia, ActionDelete, true},
		{"products cannot be deleted", enums.UserRoleCompany, ResourceProducts, ActionDelete, false},
		{"sales cannot be deleted", enums.UserRoleCompany, ResourceSales, ActionDelete, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := table.Allows(tc.role, tc.resource, tc.action); got != tc.want {
				t.Fatalf("Allows(%s, %s, %s) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
			}
		})
	}
}

func TestPolicyTableDeniesUnknownRole(t *testing.T) {
	table := DefaultPolicyTable()
	if table.Allows(enums.UserRole("admin"), ResourceProducts, ActionRead) {
		t.Fatal("unknown role should be denied")
	}
}

func TestAuthorizeMiddleware(t *testing.T) {
	table := DefaultPolicyTable()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows permitted operation", func(t *testing.T) {
		handler := Authorize(table, ResourceSales, ActionCreate, nil)(next)
		req := httptest.NewRequest(http.MethodPost, "/api/sales", nil)
		req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleDistributor)))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	})

	t.Run("denies forbidden operation", func(t *testing.T) {
		handler := Authorize(table, ResourceProducts, ActionCreate, nil)(next)
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleDistributor)))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", resp.Code)
		}
	})

	t.Run("denies missing role", func(t *testing.T) {
		handler := Authorize(table, ResourceProducts, ActionRead, nil)(next)
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", resp.Code)
		}
	})
}
