package server

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasnainakber9/tabflow-startup/internal/errors"
)

// tokenTTL is the signed token lifetime.
const tokenTTL = 30 * 24 * time.Hour

// bcryptCost matches the original backend's hashing cost.
const bcryptCost = 10

// jwtSecret returns the signing secret. TABFLOW_JWT_SECRET must be set in
// production; the fallback exists for local development only.
func jwtSecret() []byte {
	if s := os.Getenv("TABFLOW_JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("tabflow-dev-secret")
}

// hashPassword hashes a password for storage.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(hash), nil
}

// checkPassword compares a password against its stored hash.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateToken signs a bearer token for the user.
func generateToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"exp":    time.Now().Add(tokenTTL).Unix(),
		"iat":    time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return token, nil
}

// verifyToken validates a bearer token and returns the user id it encodes.
func verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.NewUnauthorized()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.NewUnauthorized()
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", errors.NewUnauthorized()
	}
	return userID, nil
}

// authUserID extracts and validates the bearer token from a request.
// Requests failing here are rejected before the body is touched.
func authUserID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.NewUnauthorized()
	}
	return verifyToken(strings.TrimPrefix(header, "Bearer "))
}
