package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrExpiredToken is returned when a token verifies but is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken is returned when a token is malformed, forged, or signed with
	// an unexpected algorithm.
	ErrInvalidToken = errors.New("invalid token")
)

const claimExpiry = "exp"

// Codec signs and verifies compact expiring tokens with a single shared secret.
// The signing algorithm is fixed to HS256 and pinned on verification.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewCodec creates a codec for the given secret.
func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec reading the current time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Encode signs payload with an absolute expiry of now+expiry stored under "exp".
// The caller's map is not modified.
func (c *Codec) Encode(payload map[string]any, expiry time.Duration) (string, error) {
	claims := make(jwt.MapClaims, len(payload)+1)
	for k, v := range payload {
		claims[k] = v
	}
	claims[claimExpiry] = jwt.NewNumericDate(c.now().Add(expiry))

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of token and returns its payload.
// Failures wrap ErrExpiredToken or ErrInvalidToken.
func (c *Codec) Decode(token string) (map[string]any, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithJSONNumber(),
		// expiry is checked below against the codec clock
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method != c.method {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	exp, err := expiryOf(claims)
	if err != nil {
		return nil, err
	}
	if c.now().After(exp) {
		return nil, ErrExpiredToken
	}

	payload := make(map[string]any, len(claims))
	for k, v := range claims {
		payload[k] = v
	}
	return payload, nil
}

func expiryOf(claims jwt.MapClaims) (time.Time, error) {
	raw, ok := claims[claimExpiry]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	num, ok := raw.(json.Number)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: exp is not numeric", ErrInvalidToken)
	}
	secs, err := num.Float64()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: exp: %v", ErrInvalidToken, err)
	}
	return time.Unix(int64(secs), 0), nil
}
