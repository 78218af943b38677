package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const confirmAudience = "email-confirm"

// ConfirmTokenSigner issues and verifies email confirmation tokens.
// Tokens are compact HS256 JWTs, URL-safe as-is.
type ConfirmTokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewConfirmTokenSigner(secret, issuer string, ttl time.Duration) *ConfirmTokenSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConfirmTokenSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type confirmClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *ConfirmTokenSigner) Generate(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}

	now := s.now()
	claims := confirmClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{confirmAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify returns the email carried by a valid token.
func (s *ConfirmTokenSigner) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrConfirmTokenInvalid()
	}

	parsed, err := jwt.ParseWithClaims(token, &confirmClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(confirmAudience),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrConfirmTokenExpired()
		}
		return "", domain.ErrConfirmTokenInvalid()
	}

	claims, ok := parsed.Claims.(*confirmClaims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return "", domain.ErrConfirmTokenInvalid()
	}
	return claims.Email, nil
}
