package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

func runRBAC(t *testing.T, claim *domain.Claim, allowed ...domain.Role) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claim != nil {
		c.Set(ClaimKey, claim)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireRoles(allowed...)(next)(c)
	return rec, err
}

func TestRequireRoles_Allowed(t *testing.T) {
	rec, err := runRBAC(t, &domain.Claim{Role: domain.RoleSubAdmin}, domain.RolePrimeAdmin, domain.RoleSubAdmin)
	if err != nil {
		t.Fatalf("rbac: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
}

func TestRequireRoles_Forbidden(t *testing.T) {
	rec, err := runRBAC(t, &domain.Claim{Role: domain.RoleRider}, domain.RolePrimeAdmin, domain.RoleSubAdmin)
	if err != nil {
		t.Fatalf("rbac: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rec.Code)
	}
}

func TestRequireRoles_MissingClaim(t *testing.T) {
	_, err := runRBAC(t, nil, domain.RolePrimeAdmin)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}
