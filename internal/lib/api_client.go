package lib

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AnotherFullstackDev/httpreqx"
)

type ApiClient struct {
	baseURL *url.URL
	*httpreqx.HttpClient
}

func NewApiClient(baseURL string, headers map[string]string) (*ApiClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w - base url %q must be absolute", BadUserInputError, baseURL)
	}

	httpClient := httpreqx.NewHttpClient().
		SetBodyMarshaler(httpreqx.NewJSONBodyMarshaler()).
		SetBodyUnmarshaler(httpreqx.NewJSONBodyUnmarshaler()).
		SetHeaders(headers).
		SetStackTraceEnabled(false)

	return &ApiClient{
		baseURL:    base,
		HttpClient: httpClient,
	}, nil
}

func (c *ApiClient) buildUrl(path string) *url.URL {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return c.baseURL.JoinPath(segments...)
}

func (c *ApiClient) URL(path string) string {
	return c.buildUrl(path).String()
}

func (c *ApiClient) URLf(format string, a ...any) string {
	path := fmt.Sprintf(format, a...)
	return c.buildUrl(path).String()
}
