package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/HD3-run/Rcommitra/internal/auth"
	"github.com/HD3-run/Rcommitra/internal/cache"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenResolver maps phantom tokens to claims; unknown tokens resolve to
// nil the way an expired Redis entry would.
type stubTokenResolver struct {
	claims map[string]*auth.Claims
}

func (r *stubTokenResolver) Resolve(_ context.Context, phantom string) (*auth.Claims, error) {
	return r.claims[phantom], nil
}

var _ middleware.TokenResolver = (*stubTokenResolver)(nil)

func claimsFor(u *model.User) *auth.Claims {
	return &auth.Claims{
		Role:       u.Role,
		MerchantID: u.MerchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(u.UserID, 10),
		},
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *session.MemoryStore, *stubUserRepo, *stubTokenResolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore(time.Hour)
	users := newStubUserRepo()
	identities := cache.NewMemory()
	t.Cleanup(identities.Close)
	tokens := &stubTokenResolver{claims: make(map[string]*auth.Claims)}

	r := gin.New()
	r.GET("/me", middleware.Authenticate(store, users, identities, tokens), func(gc *gin.Context) {
		gc.JSON(http.StatusOK, middleware.GetIdentity(gc))
	})
	return r, store, users, tokens
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	r, store, users, _ := newAuthRouter(t)
	u := seedEmployee(users, 1, model.RoleAdmin)
	sid, err := store.Create(context.Background(), u.UserID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":`+strconv.FormatInt(u.UserID, 10))
}

func TestAuthenticate_PhantomHeader(t *testing.T) {
	r, _, users, tokens := newAuthRouter(t)
	u := seedEmployee(users, 1, model.RoleManager)
	tokens.claims["tok-1"] = claimsFor(u)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(middleware.PhantomHeader, "tok-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"`+model.RoleManager+`"`)
}

func TestAuthenticate_BearerPhantom(t *testing.T) {
	r, _, users, tokens := newAuthRouter(t)
	u := seedEmployee(users, 1, model.RoleEmployee)
	tokens.claims["tok-2"] = claimsFor(u)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	r, _, _, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")
}

func TestAuthenticate_UnknownPhantom(t *testing.T) {
	r, _, _, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(middleware.PhantomHeader, "no-such-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestAuthenticate_PhantomForDeletedUser(t *testing.T) {
	r, _, users, tokens := newAuthRouter(t)
	u := seedEmployee(users, 1, model.RoleEmployee)
	tokens.claims["tok-3"] = claimsFor(u)
	_, err := users.DeleteNonAdmin(context.Background(), u.UserID, 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(middleware.PhantomHeader, "tok-3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}
