package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserEmail string `json:"user_email"`
	jwt.RegisteredClaims
}
