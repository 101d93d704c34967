package crypto

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/stockwatch/pkg/constants"
)

// Verification failures. Callers match them with errors.Is.
var (
	ErrTokenMalformed        = stderrors.New("token is malformed")
	ErrTokenSignatureInvalid = stderrors.New("token signature is invalid")
	ErrTokenExpired          = stderrors.New("token is expired")
	ErrTokenInvalid          = stderrors.New("token is invalid")
	ErrEmptySecret           = stderrors.New("signing secret must not be empty")
)

// Claims is the JSON claim set carried by an identity token.
type Claims map[string]interface{}

// String returns the claim as a non-empty string.
func (c Claims) String(name string) (string, bool) {
	s, ok := c[name].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

type issueOptions struct {
	ttl *time.Duration
	now func() time.Time
}

// IssueOption customises Issue.
type IssueOption func(*issueOptions)

// WithTTL adds an exp claim of now+ttl. A zero or negative ttl yields a token that is already expired.
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) { o.ttl = &ttl }
}

// WithIssueClock replaces time.Now when computing exp.
func WithIssueClock(now func() time.Time) IssueOption {
	return func(o *issueOptions) { o.now = now }
}

type verifyOptions struct {
	now func() time.Time
}

// VerifyOption customises Verify.
type VerifyOption func(*verifyOptions)

// WithVerifyClock replaces time.Now when checking exp.
func WithVerifyClock(now func() time.Time) VerifyOption {
	return func(o *verifyOptions) { o.now = now }
}

// Issue signs claims with HS256.
func Issue(claims Claims, secret []byte, opts ...IssueOption) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	o := issueOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	if o.ttl != nil {
		mc[constants.ClaimExpiresAt] = jwt.NewNumericDate(o.now().Add(*o.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and, when present, the exp claim, and returns the decoded claims.
func Verify(token string, secret []byte, opts ...VerifyOption) (Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	o := verifyOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	mc := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, mc, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	return Claims(mc), nil
}

func classify(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// Reason names a verification failure for logs and metrics.
func Reason(err error) string {
	switch {
	case stderrors.Is(err, ErrTokenMalformed):
		return "malformed"
	case stderrors.Is(err, ErrTokenSignatureInvalid):
		return "signature"
	case stderrors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}

// TokenCodec binds a signing secret and a default lifetime.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock sets the clock used for both issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec fails when the secret is empty. A ttl of zero means tokens carry no exp.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims with the codec's default lifetime.
func (c *TokenCodec) Issue(claims Claims) (string, error) {
	opts := []IssueOption{WithIssueClock(c.now)}
	if c.ttl > 0 {
		opts = append(opts, WithTTL(c.ttl))
	}
	return Issue(claims, c.secret, opts...)
}

// IssueFor issues an identity token for the given Google account id.
func (c *TokenCodec) IssueFor(googleID string) (string, error) {
	return c.Issue(Claims{constants.ClaimGoogleID: googleID})
}

// Verify verifies a token issued with the codec's secret.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	return Verify(token, c.secret, WithVerifyClock(c.now))
}

// TTL returns the default token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

//Personal.AI order the ending
