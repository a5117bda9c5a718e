package lib

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/ecode"
)

var (
	ErrTokenMissing = ecode.New(ecode.Unauthorized, "Access denied, no token provided")
	ErrTokenExpired = ecode.New(ecode.Expired, "Token expired, please log in again")
	ErrTokenInvalid = ecode.New(ecode.InvalidToken, "Invalid token")
)

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Generate signs a token for userID.
func (m *TokenManager) Generate(userID primitive.ObjectID) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"iat":    now.Unix(),
		"exp":    now.Add(m.ttl).Unix(),
		"jti":    uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry and returns the encoded user id. Expired
// tokens are reported separately from malformed or tampered ones.
func (m *TokenManager) Verify(tokenString string) (primitive.ObjectID, error) {
	if tokenString == "" {
		return primitive.NilObjectID, ErrTokenMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, ErrTokenExpired
		}
		return primitive.NilObjectID, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, ErrTokenInvalid
	}

	hex, ok := claims["userId"].(string)
	if !ok {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	return id, nil
}
