package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

// Claims carried by access tokens. Identity issuance itself lives outside
// this service; we only validate what the identity provider signed.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret      []byte
	expiry      time.Duration
	issuer      string
	signingAlgo jwt.SigningMethod
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
	Issuer      string
}

func NewJWTService(cfg JWTConfig) *JWTService {
	return &JWTService{
		secret:      []byte(cfg.Secret),
		expiry:      time.Duration(cfg.ExpiryHours) * time.Hour,
		issuer:      cfg.Issuer,
		signingAlgo: jwt.SigningMethodHS256,
	}
}

// GenerateToken issues an access token for an actor. Used by tooling and
// tests; production tokens come from the identity provider.
func (s *JWTService) GenerateToken(actor model.Actor) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: actor.ID.String(),
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(s.signingAlgo, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a signed token into the actor it identifies.
func (s *JWTService) ValidateToken(tokenString string) (model.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != s.signingAlgo {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return model.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return model.Actor{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Actor{}, fmt.Errorf("invalid user ID in token: %w", err)
	}

	role := model.Role(claims.Role)
	switch role {
	case model.RolePatient, model.RoleDoctor, model.RoleAdmin:
	default:
		return model.Actor{}, fmt.Errorf("unknown role in token: %q", claims.Role)
	}

	return model.Actor{ID: userID, Role: role}, nil
}
