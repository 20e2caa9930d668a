// Package auth holds the authentication strategies: password checks, OAuth
// profile resolution, the Google provider and signed access tokens.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the encrypted subject and email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity is what a verified token resolves to.
type Identity struct {
	UserID int64
	Email  string
}

// TokenIssuer signs HS256 access tokens whose sub and email claims are
// encrypted with the subject cipher, so the database id never appears in a
// decodable payload.
type TokenIssuer struct {
	secret []byte
	cipher *cryptox.SubjectCipher
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, cipher *cryptox.SubjectCipher, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), cipher: cipher, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user and its expiry.
func (i *TokenIssuer) Issue(userID int64, email string) (string, time.Time, error) {
	sub, err := i.cipher.Encrypt(strconv.FormatInt(userID, 10))
	if err != nil {
		return "", time.Time{}, err
	}
	encEmail, err := i.cipher.Encrypt(email)
	if err != nil {
		return "", time.Time{}, err
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: encEmail,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, algorithm and expiry, then decrypts the claims.
// Expired tokens yield common.ErrTokenExpired; anything else wrong yields
// common.ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	sub, err := i.cipher.Decrypt(claims.Subject)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	email, err := i.cipher.Decrypt(claims.Email)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: userID, Email: email}, nil
}
