package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/pkg/config"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

// CallObserver receives the outcome of each remote call.
type CallObserver func(action string, duration time.Duration, err error)

// Client talks to the spreadsheet web app that stores suggestions. The
// sheet is the source of truth; the portal never writes anywhere else.
// Every call is bounded by the configured timeout so a hung upstream
// cannot pin the dashboard's busy state.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	logger           *zap.Logger
	timeout          time.Duration
	legacyOpaquePOST bool
	observe          CallObserver
}

// SetObserver registers a callback invoked after every remote call.
// Must be called before the client is shared.
func (c *Client) SetObserver(fn CallObserver) {
	c.observe = fn
}

// NewClient constructs a sheet client.
func NewClient(cfg config.SheetConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:          cfg.URL,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logger,
		timeout:          timeout,
		legacyOpaquePOST: cfg.LegacyOpaquePOST,
	}
}

// GetSuggestions fetches the full record set. Tier visibility is applied
// by the caller; the sheet is unaware of access levels.
func (c *Client) GetSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	var envelope listEnvelope
	if err := c.get(ctx, url.Values{"action": {"getSuggestions"}}, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, c.remoteError(fmt.Errorf("getSuggestions failed: %s", envelope.Message))
	}

	suggestions := make([]models.Suggestion, 0, len(envelope.Suggestions))
	for i, record := range envelope.Suggestions {
		suggestions = append(suggestions, record.ToSuggestion(i))
	}
	return suggestions, nil
}

// SubmitResponse writes an admin response to one sheet row. The readable
// JSON acknowledgement is the primary contract; the legacy opaque mode
// treats any 2xx as success because the old no-cors transport could not
// read the body at all.
func (c *Client) SubmitResponse(ctx context.Context, rowIndex int, responseText, respondedBy string, respondedAt time.Time) error {
	payload := responsePayload{
		Action:      "submitResponse",
		RowIndex:    rowIndex,
		Response:    responseText,
		RespondedBy: respondedBy,
		RespondedAt: respondedAt.UTC().Format(time.RFC3339),
	}

	body, resp, err := c.post(ctx, payload.Action, payload)
	if err != nil {
		return err
	}

	if c.legacyOpaquePOST {
		c.logger.Debug("sheet response submitted in legacy opaque mode", zap.Int("row_index", rowIndex), zap.Int("status", resp.StatusCode))
		return nil
	}

	var ack ackEnvelope
	if err := json.Unmarshal(body, &ack); err != nil {
		return c.remoteError(fmt.Errorf("decode submitResponse ack: %w", err))
	}
	if !ack.Success {
		return c.remoteError(ack.err())
	}
	return nil
}

// SearchByTrackingID returns the anonymous submissions matching a
// tracking id. Zero matches is not an error.
func (c *Client) SearchByTrackingID(ctx context.Context, trackingID string) ([]models.Suggestion, error) {
	return c.search(ctx, url.Values{"action": {"searchByTrackingId"}, "trackingId": {trackingID}})
}

// SearchByEmail returns the attributed submissions for an email address.
func (c *Client) SearchByEmail(ctx context.Context, email string) ([]models.Suggestion, error) {
	return c.search(ctx, url.Values{"action": {"searchByEmail"}, "email": {email}})
}

// SubmitSuggestion appends a public submission row.
func (c *Client) SubmitSuggestion(ctx context.Context, submission Submission) error {
	body, resp, err := c.post(ctx, "submitSuggestion", submission)
	if err != nil {
		return err
	}

	if c.legacyOpaquePOST {
		c.logger.Debug("suggestion submitted in legacy opaque mode", zap.Int("status", resp.StatusCode))
		return nil
	}

	var ack ackEnvelope
	if err := json.Unmarshal(body, &ack); err != nil {
		return c.remoteError(fmt.Errorf("decode submission ack: %w", err))
	}
	if !ack.Success {
		return c.remoteError(ack.err())
	}
	return nil
}

func (c *Client) search(ctx context.Context, params url.Values) ([]models.Suggestion, error) {
	var envelope searchEnvelope
	if err := c.get(ctx, params, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, c.remoteError(fmt.Errorf("search failed: %s", envelope.Message))
	}

	results := make([]models.Suggestion, 0, len(envelope.Results))
	for i, record := range envelope.Results {
		results = append(results, record.ToSuggestion(i))
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, params url.Values, dest interface{}) (retErr error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { c.observeCall(params.Get("action"), start, retErr) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return c.remoteError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.remoteError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sheet request",
		zap.String("action", params.Get("action")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.remoteError(fmt.Errorf("sheet returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return c.remoteError(fmt.Errorf("decode sheet payload: %w", err))
	}
	return nil
}

func (c *Client) post(ctx context.Context, action string, payload interface{}) (body []byte, resp *http.Response, retErr error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { c.observeCall(action, start, retErr) }()

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, c.remoteError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, c.remoteError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = c.httpClient.Do(req)
	if err != nil {
		return nil, nil, c.remoteError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, c.remoteError(fmt.Errorf("sheet returned status %d", resp.StatusCode))
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil && !c.legacyOpaquePOST {
		return nil, resp, c.remoteError(fmt.Errorf("read sheet response: %w", err))
	}
	return body, resp, nil
}

func (c *Client) observeCall(action string, start time.Time, err error) {
	if c.observe != nil {
		c.observe(action, time.Since(start), err)
	}
}

func (c *Client) remoteError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, appErrors.ErrRemoteUnavailable.Message)
}
