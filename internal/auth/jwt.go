package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Claims identify the user and the session a token was issued for.
type Claims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

type Manager struct {
	secret []byte
	expiry time.Duration
}

func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{secret: []byte(secret), expiry: expiry}
}

// GenerateToken signs a token for the session and returns it with its
// expiry.
func (m *Manager) GenerateToken(userID, sessionID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.expiry)
	claims := jwt.MapClaims{
		"user_id":    userID.String(),
		"session_id": sessionID.String(),
		"exp":        jwt.NewNumericDate(expiresAt),
		"iat":        jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	return signed, expiresAt, err
}

func (m *Manager) ParseToken(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidClaims
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return Claims{}, ErrInvalidClaims
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return Claims{}, ErrInvalidClaims
	}

	// токены без session_id выпущены до появления сессий
	var sessionID uuid.UUID
	if rawSession, ok := claims["session_id"].(string); ok {
		sessionID, _ = uuid.Parse(rawSession)
	}
	return Claims{UserID: userID, SessionID: sessionID}, nil
}
