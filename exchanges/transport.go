package exchanges

import (
	"crypto/tls"

	"github.com/go-resty/resty/v2"

	"github.com/xiaolo66/polo"
)

// RestyTransport is the default Transport. Timeout, User-Agent, certificate
// verification and proxy come from Options and are applied as given.
type RestyTransport struct {
	client *resty.Client
}

func NewRestyTransport(option polo.Options) *RestyTransport {
	client := resty.New().
		SetTimeout(option.Timeout).
		SetHeader("User-Agent", option.UserAgent).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !option.IsStrictSSL()})
	if option.ProxyUrl != "" {
		client.SetProxy(option.ProxyUrl)
	}
	return &RestyTransport{client: client}
}

func (t *RestyTransport) Do(request Request) (int, []byte, error) {
	req := t.client.R()
	for key, values := range request.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if request.Body != "" {
		req.SetBody(request.Body)
	}
	res, err := req.Execute(request.Method, request.Url)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode(), res.Body(), nil
}
