// Package spine is the outbound HTTP adapter towards the Spine messaging
// endpoints. It owns the asynchronous submit-and-poll protocol for clinical
// uploads and the synchronous calls for consent and record retrieval.
package spine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"github.com/Cleo-Systems/elevate-scr/internal/service/correlation"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const (
	contentLocationHeader = "Content-Location"
	retryAfterHeader      = "Retry-After"

	nhsdAsidFromHeader = "NHSD-ASID-From"
	nhsdAsidToHeader   = "NHSD-ASID-To"
	nhsdIdentityHeader = "NHSD-Identity-UUID"
	nhsdSessionHeader  = "NHSD-Session-URID"
	clientIPHeader     = "client-ip"
)

// Identity carries the caller's identity headers, forwarded on every
// outbound Spine call.
type Identity struct {
	NhsdAsid        string
	NhsdIdentity    string
	NhsdSessionURID string
	ClientIP        string
}

// Accepted is Spine's answer to a successful submission: where to poll and
// how long to wait before the first poll.
type Accepted struct {
	ContentLocation string
	RetryAfter      time.Duration
}

type Client struct {
	baseURL          string
	clinicalPath     string
	acsPath          string
	nhsdAsidTo       string
	fallbackInterval time.Duration
	http             *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:          strings.TrimRight(cfg.SpineURL, "/"),
		clinicalPath:     cfg.SpineClinicalPath,
		acsPath:          cfg.SpineACSPath,
		nhsdAsidTo:       cfg.NhsdAsidTo,
		fallbackInterval: cfg.PollFallbackInterval,
		http:             &http.Client{Timeout: 30 * time.Second},
	}
}

// SendSummary posts the rendered clinical upload message. The only accepted
// answer is 202 with both Content-Location and Retry-After headers present
// and well formed. Anything else is a terminal rejection; submission is
// never retried.
func (c *Client) SendSummary(ctx context.Context, message string, identity Identity) (Accepted, error) {
	resp, body, err := c.post(ctx, c.baseURL+c.clinicalPath, message, identity)
	if err != nil {
		return Accepted{}, exceptions.SubmissionError{StatusCode: http.StatusBadGateway, Reason: err.Error()}
	}
	if resp.StatusCode != http.StatusAccepted {
		return Accepted{}, exceptions.SubmissionError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(body)}
	}
	location := resp.Header.Get(contentLocationHeader)
	if location == "" {
		return Accepted{}, exceptions.SubmissionError{StatusCode: resp.StatusCode, Reason: "accepted response carries no Content-Location"}
	}
	retryAfter, err := parseRetryAfter(resp.Header.Get(retryAfterHeader))
	if err != nil {
		return Accepted{}, exceptions.SubmissionError{StatusCode: resp.StatusCode, Reason: err.Error()}
	}
	correlation.Logger(ctx).Info("summary accepted by spine",
		zap.String("contentLocation", location),
		zap.Duration("retryAfter", retryAfter))
	return Accepted{ContentLocation: location, RetryAfter: retryAfter}, nil
}

// GetProcessingResult polls the accepted submission's content location until
// Spine answers with a final body, the deadline passes, or ctx is cancelled.
// Polls are strictly sequential; each 202 answer's Retry-After (or the
// configured fallback when absent) paces the next poll.
func (c *Client) GetProcessingResult(ctx context.Context, accepted Accepted, identity Identity, deadline time.Time) (ProcessingResult, error) {
	logger := correlation.Logger(ctx)
	wait := accepted.RetryAfter
	for attempt := 1; ; attempt++ {
		if err := sleep(ctx, wait); err != nil {
			return ProcessingResult{}, err
		}
		if !time.Now().Before(deadline) {
			logger.Warn("submission result not available before deadline",
				zap.Int("polls", attempt-1))
			return ProcessingResult{Outcome: OutcomeTimedOut}, exceptions.ErrTimeout
		}

		resp, body, err := c.get(ctx, c.pollURL(accepted.ContentLocation), identity)
		if err != nil {
			return ProcessingResult{}, exceptions.PollingFailedError{Reasons: []string{err.Error()}}
		}
		switch resp.StatusCode {
		case http.StatusAccepted:
			wait = c.fallbackInterval
			if d, err := parseRetryAfter(resp.Header.Get(retryAfterHeader)); err == nil {
				wait = d
			}
			logger.Debug("submission still processing",
				zap.Int("attempt", attempt),
				zap.Duration("nextPoll", wait))
		case http.StatusOK:
			result, err := ParseProcessingResult(body)
			if err != nil {
				return ProcessingResult{}, err
			}
			logger.Info("submission processing finished",
				zap.String("outcome", string(result.Outcome)),
				zap.Int("polls", attempt))
			return result, nil
		default:
			return ProcessingResult{}, exceptions.PollingFailedError{
				Reasons: []string{fmt.Sprintf("unexpected polling status %d", resp.StatusCode)},
			}
		}
	}
}

// SendACSMessage posts a consent (access control service) message and
// returns the response body of a 200 answer.
func (c *Client) SendACSMessage(ctx context.Context, message string, identity Identity) (string, error) {
	resp, body, err := c.post(ctx, c.baseURL+c.acsPath, message, identity)
	if err != nil {
		return "", exceptions.SubmissionError{StatusCode: http.StatusBadGateway, Reason: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", exceptions.SubmissionError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(body)}
	}
	return body, nil
}

// SendEventListQuery posts a record retrieval query and returns the response
// body of a 200 answer.
func (c *Client) SendEventListQuery(ctx context.Context, message string, identity Identity) (string, error) {
	resp, body, err := c.post(ctx, c.baseURL+c.clinicalPath, message, identity)
	if err != nil {
		return "", exceptions.SubmissionError{StatusCode: http.StatusBadGateway, Reason: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", exceptions.SubmissionError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(body)}
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, url, message string, identity Identity) (*http.Response, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "text/xml")
	c.setHeaders(ctx, req, identity)
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string, identity Identity) (*http.Response, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	c.setHeaders(ctx, req, identity)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return resp, string(body), nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, identity Identity) {
	if token := correlation.Token(ctx); token != "" {
		req.Header.Set(correlation.HeaderName, token)
	}
	req.Header.Set(nhsdAsidFromHeader, identity.NhsdAsid)
	req.Header.Set(nhsdAsidToHeader, c.nhsdAsidTo)
	req.Header.Set(nhsdIdentityHeader, identity.NhsdIdentity)
	req.Header.Set(nhsdSessionHeader, identity.NhsdSessionURID)
	req.Header.Set(clientIPHeader, identity.ClientIP)
}

// pollURL accepts either an absolute content location or one relative to the
// configured Spine base URL.
func (c *Client) pollURL(contentLocation string) string {
	if strings.HasPrefix(contentLocation, "http://") || strings.HasPrefix(contentLocation, "https://") {
		return contentLocation
	}
	if !strings.HasPrefix(contentLocation, "/") {
		contentLocation = "/" + contentLocation
	}
	return c.baseURL + contentLocation
}

// parseRetryAfter reads Spine's Retry-After value, a bare number of
// milliseconds.
func parseRetryAfter(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("accepted response carries no %s", retryAfterHeader)
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("malformed %s value %q", retryAfterHeader, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
