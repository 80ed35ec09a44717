package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Authentication modes accepted by the API.
const (
	AuthModeNone   = "none"
	AuthModeAPIKey = "api_key"
	AuthModeBearer = "bearer"
)

const userKey contextKey = "api_user"

// User holds information about the authenticated caller.
type User struct {
	Subject  string
	AuthType string
}

// GetUser returns the User from context, or nil if not set.
func GetUser(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

// Authenticator validates request credentials.
type Authenticator interface {
	Authenticate(r *http.Request) (*User, error)
}

// APIKeyAuthenticator validates access via static API keys. Stored keys
// beginning with "$2" are treated as bcrypt hashes; anything else is
// compared in constant time.
type APIKeyAuthenticator struct {
	Keys map[string]string // key or bcrypt hash -> subject name
}

// Authenticate checks the X-API-Key or Authorization header.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*User, error) {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		auth := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			key = token
		}
	}
	if key == "" {
		return nil, nil //nolint:nilnil // nil user with nil error means no credentials provided
	}

	for stored, subject := range a.Keys {
		if matchKey(stored, key) {
			return &User{Subject: subject, AuthType: "apikey"}, nil
		}
	}
	return nil, nil //nolint:nilnil // nil user with nil error means invalid key (unauthenticated)
}

// matchKey compares a presented key against a stored key or bcrypt hash.
func matchKey(stored, presented string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// JWTConfig configures the bearer token authenticator.
type JWTConfig struct {
	// SigningKey verifies HMAC token signatures.
	SigningKey []byte

	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

// JWTAuthenticator validates HMAC-signed bearer tokens.
type JWTAuthenticator struct {
	cfg JWTConfig
}

// NewJWTAuthenticator creates a bearer token authenticator.
func NewJWTAuthenticator(cfg JWTConfig) (*JWTAuthenticator, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("jwt signing key is required")
	}
	return &JWTAuthenticator{cfg: cfg}, nil
}

// Authenticate validates the bearer token and returns its subject.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*User, error) {
	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tokenString == "" {
		return nil, nil //nolint:nilnil // nil user with nil error means no credentials provided
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.cfg.SigningKey, nil
	})
	if err != nil || !token.Valid {
		return nil, nil //nolint:nilnil // an unverifiable token is unauthenticated, not a server error
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil //nolint:nilnil // tokens without map claims are unauthenticated
	}
	if a.cfg.Issuer != "" {
		if iss, _ := claims["iss"].(string); iss != a.cfg.Issuer {
			return nil, nil //nolint:nilnil // wrong issuer is unauthenticated
		}
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject = "bearer"
	}
	return &User{Subject: subject, AuthType: "bearer"}, nil
}

// RequireAuth creates middleware that enforces authentication.
func RequireAuth(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "authentication error")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthConfig selects the authentication mode for the API.
type AuthConfig struct {
	Mode          string            `yaml:"mode"`
	Keys          map[string]string `yaml:"keys"`
	JWTSigningKey string            `yaml:"jwt_signing_key"`
	JWTIssuer     string            `yaml:"jwt_issuer"`
}

// Middleware builds the auth middleware for the configured mode. Mode
// "none" returns nil, which disables authentication.
func (c AuthConfig) Middleware() (Middleware, error) {
	switch c.Mode {
	case "", AuthModeNone:
		return nil, nil
	case AuthModeAPIKey:
		if len(c.Keys) == 0 {
			return nil, fmt.Errorf("api_key auth requires at least one key")
		}
		return RequireAuth(&APIKeyAuthenticator{Keys: c.Keys}), nil
	case AuthModeBearer:
		auth, err := NewJWTAuthenticator(JWTConfig{
			SigningKey: []byte(c.JWTSigningKey),
			Issuer:     c.JWTIssuer,
		})
		if err != nil {
			return nil, err
		}
		return RequireAuth(auth), nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", c.Mode)
	}
}
