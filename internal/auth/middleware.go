package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"tasklist/internal/cache"
	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/repository"
)

const (
	// ClaimsContextKey is where verified token claims live on the echo context.
	ClaimsContextKey = "claims"
	// UserContextKey is where the resolved user record lives.
	UserContextKey = "authUser"

	userCacheKeyPrefix = "user:"
	userCacheTTL       = 5 * time.Minute
)

// Gate authenticates requests: it verifies the bearer token and resolves
// the subject user before handlers run.
type Gate struct {
	jwtService *JWTService
	userRepo   repository.UserRepository
	cache      *cache.Client
}

// NewGate creates an authentication gate.
func NewGate(jwtService *JWTService, userRepo repository.UserRepository, cacheClient *cache.Client) *Gate {
	return &Gate{
		jwtService: jwtService,
		userRepo:   userRepo,
		cache:      cacheClient,
	}
}

// Required returns the middleware chain for routes that demand an
// authenticated caller: token verification followed by user resolution.
// Clients see a single generic 401; whether the token was malformed or
// expired is recorded in logs only.
func (g *Gate) Required() []echo.MiddlewareFunc {
	jwtConfig := echojwt.Config{
		ContextKey: ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.jwtService.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if bearerToken(c) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized,
					apperrors.MessageResponse{Message: "Access token is required"})
			}
			c.Logger().Infof("token rejected: %v", err)
			return unauthenticated()
		},
	}
	return []echo.MiddlewareFunc{echojwt.WithConfig(jwtConfig), g.loadUser}
}

// Optional attaches an identity when a valid token is present but lets the
// request proceed anonymously otherwise.
func (g *Gate) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}
			claims, err := g.jwtService.ValidateToken(token)
			if err != nil {
				return next(c)
			}
			user, err := g.lookupUser(c.Request().Context(), claims.UserID)
			if err != nil {
				return next(c)
			}
			c.Set(ClaimsContextKey, claims)
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// loadUser resolves the verified claims to a live user record. A token for
// a user that no longer exists is treated the same as an invalid token.
func (g *Gate) loadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ClaimsContextKey).(*Claims)
		if !ok {
			return unauthenticated()
		}
		user, err := g.lookupUser(c.Request().Context(), claims.UserID)
		if err != nil {
			c.Logger().Infof("token subject %s not resolvable: %v", claims.UserID, err)
			return unauthenticated()
		}
		c.Set(UserContextKey, user)
		return next(c)
	}
}

// lookupUser fetches a user by id with a short redis cache in front.
// Users are never deleted in normal operation, so the staleness window
// only matters for out-of-band removals.
func (g *Gate) lookupUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := userCacheKeyPrefix + id.String()
	if data, _ := g.cache.Get(ctx, key); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := g.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = g.cache.Set(ctx, key, payload, userCacheTTL)
	}
	return user, nil
}

// CurrentUser returns the authenticated user attached by the gate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserContextKey).(*model.User)
	return user, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized,
		apperrors.MessageResponse{Message: "Invalid or expired token. Please log in again."})
}
