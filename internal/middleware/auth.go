package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/auth"
	"github.com/HD3-run/Rcommitra/internal/cache"
	"github.com/HD3-run/Rcommitra/internal/repository"
	"github.com/HD3-run/Rcommitra/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const identityKey = "identity"

// identityTTL caps how long a cached identity may serve requests. Role or
// profile changes become visible within this window without touching the
// database on every request.
const identityTTL = 300 * time.Second

// Identity is the resolved caller attached to the request context. It is an
// immutable snapshot; handlers must not mutate it.
type Identity struct {
	UserID     int64  `json:"userId"`
	MerchantID int64  `json:"merchantId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// PhantomHeader carries the opaque phantom token for clients that cannot use
// cookies; Authorization: Bearer works as well.
const PhantomHeader = "X-Phantom-Token"

// TokenResolver maps a phantom token to its validated claims. Satisfied by
// *auth.TokenService.
type TokenResolver interface {
	Resolve(ctx context.Context, phantom string) (*auth.Claims, error)
}

// Authenticate resolves the caller into an Identity: session cookie first,
// phantom token (header or bearer) as the cookieless fallback. Missing or
// unknown credentials, and sessions whose user row no longer exists, all end
// in 401 without distinguishing the cause beyond the message.
func Authenticate(store session.Store, users repository.UserRepository, c cache.Cache, tokens TokenResolver) gin.HandlerFunc {
	return func(gc *gin.Context) {
		sid, err := gc.Cookie(session.CookieName)
		if err != nil || sid == "" {
			authenticatePhantom(gc, users, c, tokens)
			return
		}

		userID, ok, err := store.Get(gc.Request.Context(), sid)
		if err != nil {
			_ = gc.Error(apierror.Internal("session lookup failed", err))
			gc.Abort()
			return
		}
		if !ok {
			abortUnauthenticated(gc, "Session expired")
			return
		}

		ident, err := resolveIdentity(gc, users, c, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn().
					Str("request_id", gc.GetString(RequestIDKey)).
					Int64("user_id", userID).
					Msg("session references missing user")
				abortUnauthenticated(gc, "User not found")
				return
			}
			_ = gc.Error(apierror.Internal("identity lookup failed", err))
			gc.Abort()
			return
		}

		// Sliding expiration: any authenticated request extends the session.
		if err := store.Touch(gc.Request.Context(), sid); err != nil {
			log.Warn().
				Str("request_id", gc.GetString(RequestIDKey)).
				Err(err).
				Msg("session touch failed")
		}

		gc.Set(identityKey, ident)
		gc.Next()
	}
}

// authenticatePhantom handles the cookieless path: the opaque token resolves
// to signed claims server-side, then the identity loads from the same cache
// and user repo as the session path so role changes apply uniformly.
func authenticatePhantom(gc *gin.Context, users repository.UserRepository, c cache.Cache, tokens TokenResolver) {
	phantom := gc.GetHeader(PhantomHeader)
	if phantom == "" {
		if h := gc.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			phantom = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if phantom == "" {
		abortUnauthenticated(gc, "Authentication required")
		return
	}

	claims, err := tokens.Resolve(gc.Request.Context(), phantom)
	if err != nil {
		_ = gc.Error(apierror.Internal("token lookup failed", err))
		gc.Abort()
		return
	}
	if claims == nil {
		abortUnauthenticated(gc, "Invalid or expired token")
		return
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		abortUnauthenticated(gc, "Invalid or expired token")
		return
	}

	ident, err := resolveIdentity(gc, users, c, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().
				Str("request_id", gc.GetString(RequestIDKey)).
				Int64("user_id", userID).
				Msg("phantom token references missing user")
			abortUnauthenticated(gc, "User not found")
			return
		}
		_ = gc.Error(apierror.Internal("identity lookup failed", err))
		gc.Abort()
		return
	}

	gc.Set(identityKey, ident)
	gc.Next()
}

func resolveIdentity(gc *gin.Context, users repository.UserRepository, c cache.Cache, userID int64) (*Identity, error) {
	key := "user_" + strconv.FormatInt(userID, 10)
	if v, ok := c.Get(key); ok {
		if ident, ok := v.(*Identity); ok {
			return ident, nil
		}
	}

	u, err := users.FindByID(gc.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	ident := &Identity{
		UserID:     u.UserID,
		MerchantID: u.MerchantID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
	}
	c.Set(key, ident, identityTTL)
	return ident, nil
}

// InvalidateIdentity drops the cached identity for a user. Callers invoke it
// after role changes, profile updates, or deletion so the stale window closes
// immediately instead of waiting out the TTL.
func InvalidateIdentity(c cache.Cache, userID int64) {
	c.Delete("user_" + strconv.FormatInt(userID, 10))
}

// GetIdentity returns the Identity set by Authenticate, or nil when the
// route is not behind it.
func GetIdentity(gc *gin.Context) *Identity {
	v, ok := gc.Get(identityKey)
	if !ok {
		return nil
	}
	ident, _ := v.(*Identity)
	return ident
}

// RequireRole allows the request through only when the resolved role is one
// of the given roles. Authentication failures are 401; this is strictly 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(gc *gin.Context) {
		ident := GetIdentity(gc)
		if ident == nil {
			abortUnauthenticated(gc, "Authentication required")
			return
		}
		if _, ok := allowed[ident.Role]; !ok {
			gc.AbortWithStatusJSON(http.StatusForbidden,
				apierror.Response{Message: "Unauthorized access"})
			return
		}
		gc.Next()
	}
}

func abortUnauthenticated(gc *gin.Context, msg string) {
	gc.AbortWithStatusJSON(http.StatusUnauthorized, apierror.Response{Message: msg})
}
