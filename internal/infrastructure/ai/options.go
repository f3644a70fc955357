package ai

import (
	"net/http"
	"time"
)

type clientOptions struct {
	endpoint   string
	httpClient *http.Client
}

// Option ajusta un adaptador HTTP (endpoint o cliente).
type Option func(*clientOptions)

// WithEndpoint reemplaza la URL base del proveedor.
func WithEndpoint(url string) Option {
	return func(o *clientOptions) { o.endpoint = url }
}

// WithHTTPClient reemplaza el cliente HTTP.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

func buildOptions(defaultEndpoint string, timeout time.Duration, opts []Option) clientOptions {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	o := clientOptions{endpoint: defaultEndpoint, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
