// Package security provides the JWT signing/verification helper used by
// plugins/auth to authenticate bearer tokens and extract the "role" claim
// a RoleACL attribute checks against. It wraps lestrrat-go/jwx's HS256
// token type rather than reimplementing JWT parsing.
package security

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWTService signs and validates HMAC SHA-256 (HS256) JWTs for
// plugins/auth. issuer/audience, when set, are validated on every
// ValidateToken call alongside the signature and expiration.
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTService builds a JWTService signing and validating with secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// GenerateTokenWithClaims signs a JWT for userID carrying standard claims
// (sub/iat/exp, plus iss/aud if configured) and any additional
// customClaims, such as the "role" claim plugins/auth's RoleACL checks.
func (j *JWTService) GenerateTokenWithClaims(userID string, expiration time.Duration, customClaims map[string]interface{}) (string, error) {
	now := time.Now()

	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(expiration))

	if j.issuer != "" {
		builder = builder.Issuer(j.issuer)
	}
	if j.audience != "" {
		builder = builder.Audience([]string{j.audience})
	}
	for key, value := range customClaims {
		builder = builder.Claim(key, value)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, j.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// ValidateToken verifies tokenString's signature and expiration (and its
// issuer/audience, if configured) and returns the parsed token.
func (j *JWTService) ValidateToken(tokenString string) (jwt.Token, error) {
	parseOptions := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, j.secret),
	}
	if j.issuer != "" {
		parseOptions = append(parseOptions, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		parseOptions = append(parseOptions, jwt.WithAudience(j.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), parseOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return token, nil
}

// ExtractRole reads the "role" claim a RoleACL attribute is checked
// against, returning ok=false if the claim is absent or not a string
// rather than letting callers repeat an ad-hoc Get+type-assert.
func ExtractRole(token jwt.Token) (string, bool) {
	raw, ok := token.Get("role")
	if !ok {
		return "", false
	}
	role, ok := raw.(string)
	return role, ok
}
