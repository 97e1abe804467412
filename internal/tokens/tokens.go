package tokens

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Decoder turns a raw auth token into identity claims. Implementations
// decide how much of the token they trust.
type Decoder interface {
	Decode(raw string) (*Claims, error)
}

// UnverifiedDecoder reads the payload without checking the signature or
// expiry. The transport is the only trust boundary.
type UnverifiedDecoder struct{}

func (UnverifiedDecoder) Decode(raw string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// HMACDecoder requires an HS256 signature made with Secret and a valid expiry.
type HMACDecoder struct {
	Secret []byte
}

func (d HMACDecoder) Decode(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return d.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// NewDecoder picks the verifying decoder when a secret is configured.
func NewDecoder(secret []byte) Decoder {
	if len(secret) == 0 {
		return UnverifiedDecoder{}
	}
	return HMACDecoder{Secret: secret}
}
