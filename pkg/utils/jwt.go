package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
	PurposeResetVerified = "password_reset_verified"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID  string `json:"user_id,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	Email   string `json:"email,omitempty"`
	OTPHash string `json:"otp_hash,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and parses HS256 tokens with one shared secret.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (m *JWTManager) GenerateJWT(userID, role string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		UserID:  userID,
		Role:    role,
		Purpose: PurposeAccess,
	}, ttl)
}

// GenerateResetJWT embeds a keyed hash of the OTP rather than the OTP itself,
// since the token is handed back to the caller in clear. Each token gets its
// own jti so OTP attempts can be counted per token.
func (m *JWTManager) GenerateResetJWT(email, otp string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Purpose: PurposePasswordReset,
		Email:   email,
		OTPHash: m.HashOTP(email, otp),
		RegisteredClaims: jwt.RegisteredClaims{
			ID: uuid.NewString(),
		},
	}, ttl)
}

// GenerateResetVerifiedJWT is issued once the OTP has been checked and is
// the only token accepted for setting a new password.
func (m *JWTManager) GenerateResetVerifiedJWT(email string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		Purpose: PurposeResetVerified,
		Email:   email,
	}, ttl)
}

func (m *JWTManager) ParseJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *JWTManager) HashOTP(email, otp string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(email + "|" + otp))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckOTP compares in constant time.
func (m *JWTManager) CheckOTP(claims *Claims, otp string) bool {
	expected := m.HashOTP(claims.Email, otp)
	return hmac.Equal([]byte(expected), []byte(claims.OTPHash))
}

func (m *JWTManager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
