package utils

import (
	"errors"
	"time"

	"mentorly/config"

	"github.com/golang-jwt/jwt"
)

// Actor roles carried in the "role" claim.
const (
	RoleCustomer   = "customer"
	RoleSpecialist = "specialist"
	RoleAdmin      = "admin"
)

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken signs an HS256 token for subject with the given role.
// Tokens are issued elsewhere in production; this is used by the seed tool and tests.
func GenerateToken(subject, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	if len(secretKey()) == 0 {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractActor returns the subject and role of a valid token.
func ExtractActor(tokenString string) (string, string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	switch role {
	case RoleCustomer, RoleSpecialist, RoleAdmin:
	default:
		return "", "", errors.New("token does not contain a valid 'role' claim")
	}
	return sub, role, nil
}
