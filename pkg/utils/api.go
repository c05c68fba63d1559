package utils

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"
)

// ErrDecode marks responses whose body could not be decoded.
var ErrDecode = errors.New("cannot decode response")

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

type SessionOptions struct {
	UserAgent string
	Proxy     string // SOCKS5 host:port, empty for a direct connection
	Timeout   time.Duration
	Logger    *logrus.Logger
}

// Session is the HTTP client shared by every request of a run. Cookies set
// by the host (e.g. challenge clearance) are kept for later requests.
type Session struct {
	client    *http.Client
	userAgent string
	log       *logrus.Logger
}

func NewSession(opts SessionOptions) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to configure SOCKS5 proxy %s: %w", opts.Proxy, err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Session{
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		userAgent: userAgent,
		log:       logger,
	}, nil
}

// Get issues a GET request. The caller closes the response body.
func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	s.log.WithField("url", url).Debug("GET")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"url": url, "status": resp.StatusCode}).Debug("response")
	return resp, nil
}

// GetJSON fetches url and decodes the body into v.
func (s *Session) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("User-Agent", s.userAgent)

	s.log.WithField("url", url).Debug("GET json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := decodedBody(resp)
	if err != nil {
		return fmt.Errorf("%w from %s: %v", ErrDecode, url, err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w from %s (status %d): %v", ErrDecode, url, resp.StatusCode, err)
	}
	return nil
}

// decodedBody undoes the Content-Encoding of resp. Asking for an encoding
// explicitly turns off the transport's own gzip handling. Closing the
// result leaves resp.Body open.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	default:
		return io.NopCloser(resp.Body), nil
	}
}
