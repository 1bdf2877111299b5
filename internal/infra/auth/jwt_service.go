// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credsvc/config"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/domain/service"
	"credsvc/internal/errors"
)

// signingMethod is the only algorithm issued and accepted.
var signingMethod = jwt.SigningMethodHS256

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Tokens carry no expiry; rotating the secret is the only way to invalidate them.
type jwtService struct {
	secret []byte           // Secret key for signing tokens, loaded once and never mutated.
	now    func() time.Time // Clock for the issued-at claim.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.SecretKey.Token == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Token),
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for the given account.
func (s *jwtService) Issue(accountID uuid.UUID) (string, error) {
	claims := service.Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()), // Issued At
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the token signature against the pinned algorithm and returns the embedded account ID.
func (s *jwtService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return uuid.Nil, errors.Wrapf(domainerrors.ErrInvalidToken, "failed to parse token structure: %v", err)
	}

	if !token.Valid {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage("token is not valid")
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage("account id claim is missing or malformed")
	}

	return accountID, nil
}
