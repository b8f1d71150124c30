package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader is the request header carrying the payload signature.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// ErrInvalidSignatureFormat means the header was present but did not
// carry the expected "sha256=<hex>" shape.
var ErrInvalidSignatureFormat = errors.New("invalid signature format, expected sha256=<hex>")

// VerifySignature checks the HMAC-SHA256 signature of the raw request
// body against the shared webhook secret. It must be given the exact
// bytes read off the wire: reserializing parsed JSON does not round-trip
// byte-for-byte and would break the comparison.
//
// An empty secret disables verification and the call returns true. That
// is an insecure fallback kept for first-boot setups; callers are
// expected to log it loudly rather than treat it as normal.
func VerifySignature(body []byte, header, secret string) (bool, error) {
	if secret == "" {
		return true, nil
	}

	if header == "" {
		return false, nil
	}

	if !strings.HasPrefix(header, signaturePrefix) {
		return false, ErrInvalidSignatureFormat
	}
	received := strings.ToLower(strings.TrimPrefix(header, signaturePrefix))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal for constant-time comparison of the hex digests.
	return hmac.Equal([]byte(expected), []byte(received)), nil
}
