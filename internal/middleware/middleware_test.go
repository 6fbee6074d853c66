package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "middleware-test-secret"

type memoryBlacklist map[string]bool

func (m memoryBlacklist) IsBlacklisted(_ context.Context, jti string) bool {
	return m[jti]
}

func signToken(t *testing.T, jti string) string {
	t.Helper()

	claims := JWTClaims{
		UserID: "user-1",
		Name:   "Ivan Petrov",
		Email:  "ivan@example.com",
		Roles:  []string{"engineer"},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authRouter(blacklist TokenBlacklist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", JWTAuth(testSecret, blacklist), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "user_id": c.GetString("user_id")})
	})
	return r
}

func doAuthRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthRevokedToken(t *testing.T) {
	blacklist := memoryBlacklist{}
	r := authRouter(blacklist)
	token := signToken(t, "jti-revoked")

	w := doAuthRequest(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before revocation, got %d", w.Code)
	}

	blacklist["jti-revoked"] = true

	w = doAuthRequest(r, token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revocation, got %d", w.Code)
	}

	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Code != 40104 {
		t.Errorf("expected code 40104, got %d", body.Code)
	}
}

func TestJWTAuthNilBlacklist(t *testing.T) {
	r := authRouter(nil)

	w := doAuthRequest(r, signToken(t, "jti-any"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with nil blacklist, got %d", w.Code)
	}
}

func TestJWTAuthMissingToken(t *testing.T) {
	r := authRouter(nil)

	w := doAuthRequest(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Code != 40100 {
		t.Errorf("expected code 40100, got %d", body.Code)
	}
}

func TestJWTAuthInvalidSignature(t *testing.T) {
	r := authRouter(nil)

	claims := jwt.RegisteredClaims{
		ID:        "jti-bad",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	w := doAuthRequest(r, token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", w.Code)
	}
}
