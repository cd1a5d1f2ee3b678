package dto

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the custom claims carried by bearer tokens.
type AuthClaims struct {
	UID  string `json:"uid"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
