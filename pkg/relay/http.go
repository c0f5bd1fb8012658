// Package relay forwards a single HTTP request on behalf of the UI and
// reports status, headers, body, timing and size.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/blackcoderx/callisto/pkg/storage"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every relayed request.
const DefaultTimeout = 30 * time.Second

// ErrUnsupportedMethod is returned for verbs outside the supported set.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Request represents an outbound HTTP request.
type Request struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body,omitempty"`
}

// Response represents the relayed HTTP response.
type Response struct {
	Status     uint16            `json:"status"`
	StatusText string            `json:"status_text"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	Time       uint64            `json:"time"` // milliseconds
	Size       int               `json:"size"` // bytes
}

// Relay provides HTTP request capabilities
type Relay struct {
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Relay.
type Option func(*Relay)

// WithTimeout overrides DefaultTimeout. Zero or less keeps DefaultTimeout;
// the relay never runs without a deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d <= 0 {
			d = DefaultTimeout
		}
		r.client.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables the cap.
func WithRateLimit(perSecond float64) Option {
	return func(r *Relay) {
		if perSecond <= 0 {
			r.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a new Relay
func New(opts ...Option) *Relay {
	r := &Relay{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromCurl builds a relay request from a parsed curl payload.
func FromCurl(spec storage.CurlSpec) Request {
	req := Request{
		Method:  spec.Method,
		URL:     spec.FullURL(),
		Headers: make(map[string]string, len(spec.Headers)),
	}
	for _, h := range spec.Headers {
		req.Headers[h.Key] = h.Value
	}
	if spec.Body != "" {
		body := spec.Body
		req.Body = &body
	}
	return req
}

// Send performs the request. Errors are descriptive and never retried.
func (r *Relay) Send(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if !supportedMethods[method] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
	}

	startTime := time.Now()

	var bodyReader io.Reader
	if req.Body != nil && *req.Body != "" {
		bodyReader = bytes.NewBufferString(*req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	elapsed := time.Since(startTime)

	headers := make(map[string]string, len(httpResp.Header))
	for key, values := range httpResp.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	statusText := http.StatusText(httpResp.StatusCode)
	if statusText == "" {
		statusText = "Unknown"
	}

	return &Response{
		Status:     uint16(httpResp.StatusCode),
		StatusText: statusText,
		Headers:    headers,
		Body:       strings.ToValidUTF8(string(bodyBytes), "\uFFFD"),
		Time:       uint64(elapsed.Milliseconds()),
		Size:       len(bodyBytes),
	}, nil
}

// FormatResponse formats the HTTP response for display
func (r *Response) FormatResponse() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Status: %d %s (%dms, %d bytes)\n\n", r.Status, r.StatusText, r.Time, r.Size))

	sb.WriteString("Headers:\n")
	for _, key := range slices.Sorted(maps.Keys(r.Headers)) {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", key, r.Headers[key]))
	}
	sb.WriteString("\n")

	// Body (try to pretty-print JSON)
	sb.WriteString("Body:\n")
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, []byte(r.Body), "", "  "); err == nil {
		sb.WriteString(prettyJSON.String())
	} else {
		sb.WriteString(r.Body)
	}

	return sb.String()
}
