package utils

import (
	"fmt"
	"telemed-service/internal/pkg/constvars"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

// GenerateSessionJWT mints a token in the shape the auth service issues.
// It is used by the dev token tool and by tests.
func GenerateSessionJWT(userID, role, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GenerateReceiptObjectKey(appointmentID string) string {
	return fmt.Sprintf(constvars.ReceiptObjectKeyFormat, appointmentID)
}
