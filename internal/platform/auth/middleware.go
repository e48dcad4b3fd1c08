package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	UsernameKey    contextKey = "username"
	UserRoleKey    contextKey = "user_role"
	TokenIDKey     contextKey = "token_id"
	TokenExpiryKey contextKey = "token_expiry"
)

const defaultIssuer = "barangay-records"

// Claims are the JWT claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, ttl: ttl, issuer: defaultIssuer, now: time.Now}
}

// Issue returns a signed token for the user together with its expiry.
func (i *TokenIssuer) Issue(userID, username, role string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: username,
		Role:     role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates the signature, issuer and time claims of tokenStr.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type JWTConfig struct {
	Issuer      *TokenIssuer
	Revocations RevocationStore
	Skipper     func(echo.Context) bool
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}
			return authenticate(c, cfg, tokenStr, next)
		}
	}
}

func authenticate(c echo.Context, cfg JWTConfig, tokenStr string, next echo.HandlerFunc) error {
	claims, err := cfg.Issuer.Parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	ctx := c.Request().Context()
	if cfg.Revocations != nil {
		revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
		}
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	ctx = context.WithValue(ctx, UsernameKey, claims.Username)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
	ctx = context.WithValue(ctx, TokenExpiryKey, exp)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("user_id", claims.Subject)

	return next(c)
}

// DevAuthMiddleware lets unauthenticated requests through as an admin in
// development. A bearer token, when present, is still validated.
func DevAuthMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			if c.Request().Header.Get("Authorization") == "" {
				ctx := c.Request().Context()
				ctx = context.WithValue(ctx, UserIDKey, "dev-user")
				ctx = context.WithValue(ctx, UsernameKey, "dev")
				ctx = context.WithValue(ctx, UserRoleKey, RoleAdmin)
				c.SetRequest(c.Request().WithContext(ctx))
				c.Set("user_id", "dev-user")
				return next(c)
			}
			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}
			return authenticate(c, cfg, tokenStr, next)
		}
	}
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(UsernameKey).(string)
	return name
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// TokenFromContext returns the id and expiry of the token that authenticated
// the request. ok is false for dev-mode requests without a token.
func TokenFromContext(ctx context.Context) (jti string, expiresAt time.Time, ok bool) {
	jti, _ = ctx.Value(TokenIDKey).(string)
	expiresAt, _ = ctx.Value(TokenExpiryKey).(time.Time)
	return jti, expiresAt, jti != ""
}
