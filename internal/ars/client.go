// Package ars talks to the Autonomous Relay System, the federated reasoning
// network that answers the annotator's query graphs.
package ars

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/core/querygraph"
	"github.com/agenthands/annotator/internal/logger"
	"github.com/agenthands/annotator/internal/transport"
)

const DefaultPollInterval = 10 * time.Second

type Client struct {
	submitURL   string
	messagesURL string
	httpClient  *http.Client
	log         *logger.Logger
	interval    time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures the Client during construction.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.interval = d
		}
	}
}

// WithClock replaces wall time and sleeping, mainly for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(cl *Client) {
		cl.now = now
		cl.sleep = sleep
	}
}

func New(submitURL, messagesURL string, opts ...Option) (*Client, error) {
	if submitURL == "" || messagesURL == "" {
		return nil, fmt.Errorf("ars: submit and messages URLs are required")
	}
	c := &Client{
		submitURL:   submitURL,
		messagesURL: strings.TrimSuffix(messagesURL, "/"),
		httpClient:  &http.Client{},
		log:         logger.Nop(),
		interval:    DefaultPollInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type submitResponse struct {
	PK string `json:"pk"`
}

type messageResponse struct {
	Fields messageFields `json:"fields"`
}

type messageFields struct {
	Status        string          `json:"status"`
	MergedVersion *string         `json:"merged_version"`
	Data          json.RawMessage `json:"data"`
}

// Submit posts the query graph and returns the job's primary key.
func (c *Client) Submit(ctx context.Context, g model.QueryGraph) (string, error) {
	var resp submitResponse
	if err := transport.DoJSON(ctx, c.httpClient, c.log, http.MethodPost, c.submitURL, "ars submit", querygraph.Document(g), &resp); err != nil {
		return "", err
	}
	if resp.PK == "" {
		return "", fmt.Errorf("ars submit: %w: response has no pk", transport.ErrNetwork)
	}
	c.log.Info("submitted query graph", "pk", resp.PK, "subjects", len(g.SubjectIDs), "objects", len(g.ObjectIDs))
	return resp.PK, nil
}

func (c *Client) message(ctx context.Context, pk string) (messageFields, error) {
	u, err := url.JoinPath(c.messagesURL, pk)
	if err != nil {
		return messageFields{}, fmt.Errorf("ars message %s: %w", pk, err)
	}
	var resp messageResponse
	if err := transport.DoJSON(ctx, c.httpClient, c.log, http.MethodGet, u, "ars message", nil, &resp); err != nil {
		return messageFields{}, err
	}
	return resp.Fields, nil
}

// FetchResult retrieves the merged TRAPI payload stored under pk. A message
// without data yields nil.
func (c *Client) FetchResult(ctx context.Context, pk string) (*model.Response, error) {
	fields, err := c.message(ctx, pk)
	if err != nil {
		return nil, err
	}
	if len(fields.Data) == 0 || string(fields.Data) == "null" {
		return nil, nil
	}
	var payload model.Response
	if err := json.Unmarshal(fields.Data, &payload); err != nil {
		return nil, fmt.Errorf("ars message %s: %w: decode data: %w", pk, transport.ErrNetwork, err)
	}
	return &payload, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
