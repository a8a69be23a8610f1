package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the vendor's keyed signature over the raw
// request body.
const SignatureHeader = "X-RaceResult-Signature"

// Signature computes the hex-encoded HMAC-SHA256 of body under secret.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a presented signature in constant time.
func VerifySignature(secret string, body []byte, presented string) bool {
	expected := Signature(secret, body)
	return hmac.Equal([]byte(expected), []byte(presented))
}
