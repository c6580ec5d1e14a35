package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	auth "github.com/mind-engage/mindengage-sheets/internal/auth/middleware"
	"github.com/mind-engage/mindengage-sheets/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	tok, err := a.IssueJWT("asha", rbac.RoleTeacher)
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "asha" || c.Role != rbac.RoleTeacher {
		t.Fatalf("claims = %+v", c)
	}
	if _, err := auth.NewAuthService("other").Parse(tok); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a := auth.NewAuthService("test-secret")
	h := auth.LoginHandler(a, auth.Account{Username: "admin", PassHash: string(hash), Role: rbac.RoleAdmin})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil || out["access_token"] == "" {
		t.Fatalf("no token: %v %v", out, err)
	}

	rr = httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rr.Code)
	}
}

func TestJWTMiddlewareSetsContext(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	tok, _ := a.IssueJWT("asha", rbac.RoleTeacher)

	var sub, role string
	h := auth.JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = auth.SubjectFromContext(r.Context())
		role = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if sub != "asha" || role != rbac.RoleTeacher {
		t.Fatalf("context = %q/%q", sub, role)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing bearer status = %d", rr.Code)
	}
}
