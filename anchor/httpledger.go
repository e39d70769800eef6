package anchor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// DefaultRetryInterval is the initial wait between two attempts of a
// failed ledger request.
const DefaultRetryInterval = 500 * time.Millisecond

// HTTPLedger talks to a remote anchor service exposing
// GET and PUT on {base}/roots/{id}. Transport errors and 5xx
// responses are retried with exponential backoff; other failures
// are returned at once.
type HTTPLedger struct {
	base          string
	client        *http.Client
	maxRetries    uint64
	retryInterval time.Duration
}

var _ Ledger = (*HTTPLedger)(nil)

// NewHTTPLedger returns a ledger client for the service at baseURL.
// A nil client means http.DefaultClient.
func NewHTTPLedger(baseURL string, client *http.Client, maxRetries uint64) *HTTPLedger {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLedger{
		base:          strings.TrimRight(baseURL, "/"),
		client:        client,
		maxRetries:    maxRetries,
		retryInterval: DefaultRetryInterval,
	}
}

// SetRetryInterval sets the initial wait between attempts.
func (l *HTTPLedger) SetRetryInterval(d time.Duration) {
	l.retryInterval = d
}

// Anchor publishes rootHex as the root of id.
func (l *HTTPLedger) Anchor(ctx context.Context, id, rootHex string) error {
	if id == "" {
		return ErrMissingID
	}
	root, err := NormalizeRoot(rootHex)
	if err != nil {
		return err
	}
	body, err := json.Marshal(RootMessage{ID: id, Root: root})
	if err != nil {
		return err
	}
	return l.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, l.rootURL(id), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := l.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
			return nil
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(errors.Wrapf(ErrAlreadyAnchored, "id %q", id))
		default:
			return statusError(resp)
		}
	})
}

// Root fetches the root anchored for id.
func (l *HTTPLedger) Root(ctx context.Context, id string) (string, error) {
	var msg RootMessage
	err := l.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.rootURL(id), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
				return backoff.Permanent(errors.Wrap(err, "anchor: decode root"))
			}
			return nil
		case http.StatusNotFound:
			return backoff.Permanent(errors.Wrapf(ErrNotAnchored, "id %q", id))
		default:
			return statusError(resp)
		}
	})
	if err != nil {
		return "", err
	}
	if msg.ID != id {
		return "", fmt.Errorf("[anchor] Ledger answered for %q instead of %q", msg.ID, id)
	}
	return NormalizeRoot(msg.Root)
}

func (l *HTTPLedger) retry(ctx context.Context, op backoff.Operation) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = l.retryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, l.maxRetries), ctx)
	return backoff.Retry(op, b)
}

func (l *HTTPLedger) rootURL(id string) string {
	return l.base + "/roots/" + url.PathEscape(id)
}

// statusError turns an unexpected response into an error. Server
// errors are left retryable.
func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("[anchor] Ledger returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	if resp.StatusCode >= http.StatusInternalServerError {
		return err
	}
	return backoff.Permanent(err)
}
