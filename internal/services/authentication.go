package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cashreward/internal/models"
)

type CustomClaims struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	return &Authentication{secret}, nil
}

func (authentication *Authentication) CreateToken(account *models.AccountFromAuth) (string, error) {
	claims := CustomClaims{
		ID:        account.ID,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.AccountFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(authentication.secret), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || !jwtToken.Valid {
		return nil, errors.New("invalid token claims")
	}

	return &models.AccountFromAuth{
		ID:        claims.ID,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

// ValidateInitData satisfies the same verifier interface as the bot service,
// so JWT-guarded routes and initdata-guarded routes share one middleware.
func (authentication *Authentication) ValidateInitData(dataStr string) (*models.AccountFromAuth, error) {
	return authentication.Validate(dataStr)
}
