package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// classify maps a go-github error onto the upstream error taxonomy.
// Forbidden and rate-limit answers become UpstreamUnavailableError, every other
// failure an UpstreamError carrying the upstream status and body.
func classify(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.UpstreamUnavailableError{StatusCode: statusOf(rateErr.Response, http.StatusForbidden)}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &domain.UpstreamUnavailableError{StatusCode: statusOf(abuseErr.Response, http.StatusForbidden)}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code == http.StatusForbidden || code == http.StatusTooManyRequests {
			return &domain.UpstreamUnavailableError{StatusCode: code}
		}
		body := respErr.Message
		// go-github puts the raw body back on the response after decoding it.
		if respErr.Response.Body != nil {
			if raw, readErr := io.ReadAll(respErr.Response.Body); readErr == nil && len(raw) > 0 {
				body = string(raw)
			}
		}
		return &domain.UpstreamError{StatusCode: code, Body: body}
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusForbidden || statusErr.StatusCode == http.StatusTooManyRequests {
			return &domain.UpstreamUnavailableError{StatusCode: statusErr.StatusCode}
		}
		return &domain.UpstreamError{StatusCode: statusErr.StatusCode, Body: statusErr.Body}
	}

	return &domain.UpstreamError{Body: err.Error()}
}

// httpStatusError is a non-2xx answer caught by statusTransport.
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// statusTransport turns non-2xx responses into *httpStatusError. The GraphQL client
// only reports a formatted message for them, which loses the status code.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}
