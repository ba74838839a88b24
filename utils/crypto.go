package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// HmacSign returns the hex encoded HMAC-SHA512 of params keyed by secret.
func HmacSign(params, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(params))
	return hex.EncodeToString(mac.Sum(nil))
}
