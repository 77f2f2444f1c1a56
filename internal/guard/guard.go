// Package guard decides whether a request may reach a protected operation.
//
// Decisions are made from the caller's bearer token. Unless a signing secret
// is configured the token is decoded without verification, which is enough
// to route a user but is never an authorisation boundary on its own.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be decoded into an identity.
var ErrMalformedToken = errors.New("malformed token")

// Identity is the caller as described by the token payload.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"-"`
}

// Decision is the outcome of a guard check. When Allowed is false the caller
// is sent to Redirect; From carries the originally requested path.
type Decision struct {
	Allowed  bool
	Redirect string
	From     string
}

// Guard holds the routes used for redirects.
type Guard struct {
	loginPath     string
	dashboardPath string
}

// New creates a guard redirecting to the given login and dashboard routes.
func New(loginPath, dashboardPath string) *Guard {
	return &Guard{loginPath: loginPath, dashboardPath: dashboardPath}
}

// RequireAuthenticated allows any non-empty token. Without one the caller is
// sent to the login route, remembering path so it can return there.
func (g *Guard) RequireAuthenticated(token, path string) Decision {
	if strings.TrimSpace(token) == "" {
		return Decision{Redirect: g.loginPath, From: path}
	}
	return Decision{Allowed: true}
}

// RequireRole allows identities whose role is one of allowed, compared
// case-insensitively. Everyone else goes to the dashboard root.
func (g *Guard) RequireRole(id *Identity, allowed []string) Decision {
	if id == nil || strings.TrimSpace(id.Role) == "" {
		return Decision{Redirect: g.dashboardPath}
	}
	for _, role := range allowed {
		if strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(id.Role)) {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: g.dashboardPath}
}

// DecodeToken reads the identity claims of a JWT without checking its signature.
func DecodeToken(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return identityFromClaims(token, claims)
}

// Decoder turns bearer tokens into identities, verifying HS256 signatures
// when it holds a secret.
type Decoder struct {
	secret []byte
}

// NewDecoder creates a decoder. An empty secret disables verification.
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Verifies reports whether signatures are checked.
func (d *Decoder) Verifies() bool {
	return len(d.secret) > 0
}

// Decode returns the identity carried by token.
func (d *Decoder) Decode(token string) (*Identity, error) {
	if !d.Verifies() {
		return DecodeToken(token)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return d.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return identityFromClaims(token, claims)
}

// identityFromClaims reads "id" (falling back to "sub"), "correo" and "rol".
func identityFromClaims(token string, claims jwt.MapClaims) (*Identity, error) {
	id := claimString(claims, "id")
	if id == "" {
		id = claimString(claims, "sub")
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrMalformedToken)
	}

	email := claimString(claims, "correo")
	if email == "" {
		email = claimString(claims, "email")
	}

	return &Identity{
		UserID: id,
		Email:  email,
		Role:   claimString(claims, "rol"),
		Token:  token,
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type identityKey struct{}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// TokenFromContext returns the bearer token of the caller, if any.
func TokenFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.Token
	}
	return ""
}
