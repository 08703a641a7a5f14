package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, header string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, uint64, string) {
	t.Helper()
	e := echo.New()

	var gotID uint64
	var gotRole string
	h := func(c echo.Context) error {
		gotID = CurrentUserID(c)
		gotRole = CurrentRole(c)
		return c.NoContent(http.StatusOK)
	}
	e.GET("/protected", h, mw...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, gotID, gotRole
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleMember, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, id, role := doRequest(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if id != 7 {
		t.Fatalf("user id = %d, want 7", id)
	}
	if role != model.RoleMember {
		t.Fatalf("role = %q, want MEMBER", role)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _, _ := doRequest(t, "", JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, model.RoleAdmin, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, _, _ := doRequest(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleBlocksMembersFromAdminRoutes(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleMember, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, _, _ := doRequest(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole(model.RoleAdmin))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, model.RoleAdmin, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, _, _ := doRequest(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole(model.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
