package poloniex

import (
	"net/http"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/utils"
)

// signer owns the key pair. The secret never leaves this type.
type signer struct {
	key    string
	secret string
}

func newSigner(key, secret string) *signer {
	return &signer{key: key, secret: secret}
}

func (s *signer) authenticated() bool {
	return s != nil && s.key != "" && s.secret != ""
}

// headers returns the Key and Sign headers for an encoded parameter string.
// encoded must be exactly the body that goes on the wire.
func (s *signer) headers(encoded string) (http.Header, error) {
	if !s.authenticated() {
		return nil, polo.ErrorAuthRequired
	}
	header := http.Header{}
	header.Set("Key", s.key)
	header.Set("Sign", utils.HmacSign(encoded, s.secret))
	return header, nil
}

func (s *signer) String() string {
	if s == nil {
		return "signer{}"
	}
	return "signer{key:" + s.key + " secret:******}"
}
