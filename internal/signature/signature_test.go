package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyValidSignature(t *testing.T) {
	body := `{"events":[]}`
	v := NewVerifier("test-secret", false)

	err := v.Verify([]byte(body), sign("test-secret", body))
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	v := NewVerifier("test-secret", false)
	header := sign("test-secret", `{"events":[]}`)

	err := v.Verify([]byte(`{"events":[{}]}`), header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := `{"events":[]}`
	v := NewVerifier("test-secret", false)

	err := v.Verify([]byte(body), sign("other-secret", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	v := NewVerifier("test-secret", false)
	err := v.Verify([]byte("body"), "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	v := NewVerifier("", false)
	err := v.Verify([]byte("body"), sign("anything", "body"))
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerifySkippedInInsecureMode(t *testing.T) {
	v := NewVerifier("", true)
	assert.NoError(t, v.Verify([]byte("body"), ""))
	assert.False(t, v.Enabled())
}
