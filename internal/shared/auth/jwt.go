package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// RoleAdmin lets a caller act on every restaurant.
const RoleAdmin = "admin"

// Claims carries the staff identity issued by the hosted auth provider.
type Claims struct {
	RestaurantID string   `json:"restaurantId"`
	Roles        []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims include role, ignoring case.
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, candidate := range c.Roles {
		if strings.EqualFold(strings.TrimSpace(candidate), role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller may act across restaurants.
func (c *Claims) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// CanAccessRestaurant reports whether the caller may act on restaurantID.
func (c *Claims) CanAccessRestaurant(restaurantID string) bool {
	if c == nil {
		return false
	}
	if c.IsAdmin() {
		return true
	}
	return c.RestaurantID != "" && c.RestaurantID == strings.TrimSpace(restaurantID)
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

type JWTValidator struct {
	secret    []byte
	publicKey *rsa.PublicKey
	now       func() time.Time
}

// NewJWTValidator creates a validator that uses HMAC (HS256) with the provided secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

// NewJWTValidatorWithPublicKey prefers RS256 when publicKeyPEM parses and falls back to HMAC otherwise.
func NewJWTValidatorWithPublicKey(secret, publicKeyPEM string) (*JWTValidator, error) {
	v := NewJWTValidator(secret)
	if strings.TrimSpace(publicKeyPEM) == "" {
		return v, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}
	v.publicKey = key
	return v, nil
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if v.publicKey == nil && len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: jwt key not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if v.publicKey != nil {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v, expected RS256", t.Header["alg"])
			}
			return v.publicKey, nil
		}
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims.RestaurantID = strings.TrimSpace(claims.RestaurantID)
	if claims.RestaurantID == "" && !claims.IsAdmin() {
		return nil, fmt.Errorf("%w: token not bound to a restaurant", ErrInvalidToken)
	}

	return claims, nil
}
