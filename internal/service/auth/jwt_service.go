package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

// JWTService signs and verifies session tokens.
type JWTService interface {
	// GenerateToken creates a signed token identifying userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the signature and returns the token's claims.
	// It returns ErrInvalidToken for anything that does not verify.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID   uuid.UUID
	TokenID  string
	IssuedAt time.Time
}

// hmacJWTService is an implementation of JWTService using HMAC-SHA256 signing.
// Tokens carry the user id, a unique token id and the issue time; they stay
// valid until they are removed from the user's token set.
type hmacJWTService struct {
	signingKey []byte
	timeFunc   func() time.Time
}

// jwtCustomClaims is the wire form of Claims.
type jwtCustomClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA256 signing.
func NewJWTService(secret string) (JWTService, error) {
	return newJWTService(secret, time.Now)
}

func newJWTService(secret string, timeFunc func() time.Time) (*hmacJWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	return &hmacJWTService{
		signingKey: []byte(secret),
		timeFunc:   timeFunc,
	}, nil
}

// GenerateToken creates a signed JWT with the user id and issue time. The
// jti claim makes every token distinct, even two issued in the same second.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	claims := jwtCustomClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(s.timeFunc()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign JWT",
			"error", err,
			"user_id", userID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return signed, nil
}

// ValidateToken validates a JWT and returns its claims. An exp claim is
// honored if present, although this service never sets one.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("token validation failed: malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("token validation failed: invalid signature")
		default:
			log.Debug("token validation failed", "error", err)
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Debug("token validation failed: bad user id claim")
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: userID, TokenID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
