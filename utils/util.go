package utils

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var lastNonce int64

// Nonce returns a value strictly greater than every value it returned before in
// this process. It tracks the wall clock in microseconds and falls back to
// last+1 when several callers land on the same tick.
func Nonce() int64 {
	for {
		last := atomic.LoadInt64(&lastNonce)
		next := time.Now().UnixNano() / int64(time.Microsecond)
		if next <= last {
			next = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastNonce, last, next) {
			return next
		}
	}
}

// FormatDecimal renders d without exponent; the zero value yields "".
func FormatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// FormatUnix renders t as unix seconds; the zero time yields "".
func FormatUnix(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func GenerateRequestID() string {
	return strings.Replace(uuid.New().String(), "-", "", -1)
}
