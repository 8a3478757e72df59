package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleDepartment Role = "department"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleDepartment, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

const Issuer = "ojttracker"

type Identity struct {
	UserID     string `json:"nameid"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
}

var ErrMissingDepartment = errors.New("department role requires a department claim")

// Validate checks the role and the claims the role depends on.
func (i Identity) Validate() error {
	if !i.Role.Valid() {
		return fmt.Errorf("unknown role %q", i.Role)
	}
	if i.Role == RoleDepartment && i.Department == "" {
		return ErrMissingDepartment
	}
	return nil
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

func DecodeSecret(base64Secret string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return secret, nil
}

func CreateIdentityToken(identity Identity, secret []byte, expiresIn time.Duration) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", err
	}
	now := time.Now()
	claims := IdentityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// ParseIdentityToken verifies the signature and expiry and returns the claims.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if err := claims.Identity.Validate(); err != nil {
		return nil, err
	}
	return claims, nil
}
