package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var (
	// ErrMissingSecret is returned when no channel secret is configured
	// and insecure mode is not enabled. Verification fails closed.
	ErrMissingSecret = errors.New("channel secret not configured")

	// ErrInvalidSignature is returned when the signature header does not
	// match the HMAC of the request body.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Verifier authenticates webhook payloads against the LINE channel
// secret. The HMAC is computed over the exact raw bytes received;
// re-serializing the JSON body can change byte layout and break it.
type Verifier struct {
	secret   []byte
	insecure bool
}

// NewVerifier creates a Verifier. When insecure is true and secret is
// empty, verification is skipped entirely.
func NewVerifier(secret string, insecure bool) *Verifier {
	return &Verifier{secret: []byte(secret), insecure: insecure}
}

// Enabled reports whether signatures are actually checked.
func (v *Verifier) Enabled() bool {
	return !v.insecure
}

// Verify checks the X-Line-Signature header value against the raw
// request body.
func (v *Verifier) Verify(body []byte, header string) error {
	if v.insecure {
		return nil
	}
	if len(v.secret) == 0 {
		return ErrMissingSecret
	}
	if header == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(header)) {
		return ErrInvalidSignature
	}
	return nil
}
