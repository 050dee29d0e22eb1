package auth

import (
	"errors"
	"strconv"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "storefront"

var ErrInvalidToken = errors.New("invalid token")

// subはuser id
type Claims struct {
	Role  string `json:"role"`
	OrgID *int64 `json:"org_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

// DI
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Role:  string(user.Role),
		OrgID: user.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 署名・期限・roleを確かめてCallerにする
func (i *JWTIssuer) Parse(raw string) (access.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuerName))
	if err != nil || !token.Valid {
		return access.Caller{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return access.Caller{}, ErrInvalidToken
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return access.Caller{}, ErrInvalidToken
	}
	return access.Caller{UserID: userID, Role: role, OrgID: claims.OrgID}, nil
}
