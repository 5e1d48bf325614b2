package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"telemed-service/internal/pkg/constvars"

	"github.com/golang-jwt/jwt/v4"
)

// ParseSessionJWT validates an HS256 bearer token and returns its id and role claims.
func ParseSessionJWT(tokenString, secret string) (userID string, role string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New(constvars.ErrDevAuthSigningMethod)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New(constvars.ErrDevAuthTokenInvalid)
	}

	userID, _ = claims["id"].(string)
	role, _ = claims["role"].(string)
	if userID == "" || role == "" {
		return "", "", errors.New(constvars.ErrDevAuthClaimsMissing)
	}

	return userID, role, nil
}

// GeneratePaymentSignature returns hex(HMAC_SHA256(secret, orderID|paymentID)),
// the signature the gateway attaches to a successful checkout.
func GeneratePaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + constvars.PaymentSignatureJoint + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func IsValidPaymentSignature(secret, orderID, paymentID, signature string) bool {
	expected := GeneratePaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
