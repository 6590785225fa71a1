package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

const maxBodyBytes = 16 << 20

type Options struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	ProxyURL           string
	RootCAs            []string
	Headers            map[string]string
	UserAgent          string
}

// Client posts JSON bodies to a playground style backend and normalizes every
// failure into an error carrying displayable text.
type Client struct {
	opts Options
	http *http.Client
}

func NewClient(opts Options) (*Client, error) {
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.BaseURL == "" {
		return nil, errdef.New(errdef.CodeConfig, "base url is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "parse base url")
	}
	hc, err := buildHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	return &Client{opts: opts, http: hc}, nil
}

// NewClientWithHTTP wraps an existing http.Client, mostly for tests.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		opts: Options{BaseURL: strings.TrimRight(baseURL, "/")},
		http: hc,
	}
}

// Post sends body as JSON to route and decodes a 2xx reply into out.
func (c *Client) Post(ctx context.Context, route string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errdef.Wrap(errdef.CodeTransport, err, "encode request")
	}
	return c.do(ctx, http.MethodPost, route, bytes.NewReader(payload), out)
}

func (c *Client) Get(ctx context.Context, route string, out any) error {
	return c.do(ctx, http.MethodGet, route, nil, out)
}

func (c *Client) do(ctx context.Context, method, route string, body io.Reader, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.opts.BaseURL + "/" + strings.TrimLeft(route, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errdef.Wrap(errdef.CodeTransport, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	for name, value := range c.opts.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errdef.Wrap(errdef.CodeTransport, err, "perform request")
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return errdef.Wrap(errdef.CodeTransport, err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errdef.Wrap(errdef.CodeDecode, err, "decode response")
	}
	return nil
}

// readBody reads at most maxBodyBytes. Bodies that declare a charset other
// than UTF-8, as some proxies do for error pages, are converted to UTF-8.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	if label := declaredCharset(resp.Header.Get("Content-Type")); label != "" {
		if decoded, err := charset.NewReaderLabel(label, r); err == nil {
			r = decoded
		}
	}
	return io.ReadAll(r)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	if label == "" || label == "utf-8" || label == "utf8" {
		return ""
	}
	return label
}

func buildHTTPClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeConfig, err, "parse proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if opts.InsecureSkipVerify || len(opts.RootCAs) > 0 {
		tlsConfig := &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify} // nolint:gosec
		if len(opts.RootCAs) > 0 {
			pool, err := loadRootCAs(opts.RootCAs)
			if err != nil {
				return nil, err
			}
			tlsConfig.RootCAs = pool
		}
		transport.TLSClientConfig = tlsConfig
	}

	client := &http.Client{Transport: transport}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}
	return client, nil
}

func loadRootCAs(paths []string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeConfig, err, "read root ca %s", p)
		}
		if ok := pool.AppendCertsFromPEM(data); !ok {
			return nil, errdef.New(errdef.CodeConfig, "append cert from %s", p)
		}
	}
	return pool, nil
}
