package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"adminpanel/models"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer signs access tokens and mints refresh tokens.
type tokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func (ti *tokenIssuer) accessToken(u models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprint(u.ID),
		"username": u.Username,
		"role":     u.Role,
		"exp":      ti.now().Add(ti.accessTTL).Unix(),
	})
	return token.SignedString(ti.secret)
}

// parse validates tokenString and returns its claims.
func (ti *tokenIssuer) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// refreshToken generates a random token, stores its hash and returns the raw value.
func (ti *tokenIssuer) refreshToken(ctx context.Context, acc accounts, userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashToken(raw), ExpiresAt: ti.now().Add(ti.refreshTTL)}
	if err := acc.SaveRefreshToken(ctx, &rt); err != nil {
		return "", err
	}
	return raw, nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
