package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrNoSigningKey   = errors.New("identity signing key not configured")
	ErrMissingSubject = errors.New("token has no subject")
)

const anonymousName = "Anonymous Patron"

// Principal is the resolved caller. Privileged is the single capability the
// storefront checks for admin operations and review moderation.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Privileged  bool   `json:"privileged"`
}

// Guest returns the unauthenticated principal
func Guest() Principal {
	return Principal{}
}

// Authenticated reports whether the principal signed in
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// Name is the display name, then the email, then a generic label
func (p Principal) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return anonymousName
}

// Claims carried by storefront tokens
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity verifies bearer tokens and decides privilege
type Identity struct {
	secret     []byte
	adminEmail string
}

// NewIdentity creates an identity resolver. An empty adminEmail means no
// principal is ever privileged.
func NewIdentity(secret, adminEmail string) *Identity {
	return &Identity{
		secret:     []byte(secret),
		adminEmail: strings.TrimSpace(adminEmail),
	}
}

// Resolve turns an Authorization header into a principal. An empty header is
// a guest.
func (i *Identity) Resolve(header string) (Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Guest(), nil
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return Guest(), fmt.Errorf("%w: expected bearer token", ErrInvalidToken)
	}
	if len(i.secret) == 0 {
		return Guest(), ErrNoSigningKey
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Guest(), fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Guest(), ErrMissingSubject
	}

	return Principal{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Privileged:  i.isAdmin(claims.Email),
	}, nil
}

// Issue signs a token for the principal
func (i *Identity) Issue(p Principal, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSigningKey
	}
	now := time.Now()
	claims := Claims{
		Email: p.Email,
		Name:  p.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Identity) isAdmin(email string) bool {
	return i.adminEmail != "" && email != "" && strings.EqualFold(email, i.adminEmail)
}
