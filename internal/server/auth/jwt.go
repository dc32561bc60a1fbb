// Package auth issues and validates session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the snapshot of a user that a session token carries.
type Identity struct {
	UserID     int64
	Username   string
	Email      string
	GivenName  string
	FamilyName string
	Role       string
}

// Claims are the JWT claims of a session token. The subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username   string `json:"unique_name"`
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Role       string `json:"role,omitempty"`
}

// UserID returns the numeric user id stored in the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Identity converts the claims back into the identity they were issued for.
func (c *Claims) Identity() (Identity, error) {
	id, err := c.UserID()
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:     id,
		Username:   c.Username,
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		Role:       c.Role,
	}, nil
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	validity time.Duration
}

func NewTokenIssuer(secretKey []byte, issuer, audience string, validity time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secretKey, issuer: issuer, audience: audience, validity: validity}
}

// Issue returns a signed token for id, valid from now for the configured
// lifetime, together with its expiry instant. Token times have one-second
// resolution, so now is truncated to match the exp claim.
func (t *TokenIssuer) Issue(id Identity, now time.Time) (string, time.Time, error) {
	now = now.Truncate(time.Second)
	expiresAt := now.Add(t.validity)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:   id.Username,
		Email:      id.Email,
		GivenName:  id.GivenName,
		FamilyName: id.FamilyName,
		Role:       id.Role,
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Parse validates signature, algorithm, issuer, audience and expiry.
// Expired tokens yield common.ErrTokenExpired, anything else invalid yields
// common.ErrInvalidToken.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		opts = append(opts, jwt.WithAudience(t.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
