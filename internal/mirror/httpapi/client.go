// Package httpapi talks to a persistence service over HTTP with a bearer
// token.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/mirror"
)

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

type Config struct {
	CreateURL string
	ExportURL string
	Token     string
	Timeout   time.Duration
	// HTTPClient overrides the pooled default; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	createURL string
	exportURL string
	token     string
	http      *http.Client
}

var _ mirror.Mirror = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.CreateURL == "" || cfg.ExportURL == "" {
		return nil, errors.New("httpapi: create and export URLs are required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = newHTTPClientWithPooling(cfg.Timeout)
	}
	return &Client{
		createURL: cfg.CreateURL,
		exportURL: cfg.ExportURL,
		token:     cfg.Token,
		http:      hc,
	}, nil
}

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// Persist POSTs tx to the create endpoint. Any transport failure, non-2xx
// status or undecodable body is returned as a *mirror.SyncError.
func (c *Client) Persist(ctx context.Context, tx core.Transaction) (mirror.Ack, error) {
	body, err := json.Marshal(mirror.NewRecord(tx))
	if err != nil {
		return mirror.Ack{}, &mirror.SyncError{Op: mirror.OpPersist, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createURL, bytes.NewReader(body))
	if err != nil {
		return mirror.Ack{}, &mirror.SyncError{Op: mirror.OpPersist, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var ack mirror.Ack
	if err := c.do(req, mirror.OpPersist, &ack); err != nil {
		return mirror.Ack{}, err
	}
	return ack, nil
}

// FetchAll GETs the export endpoint and decodes the JSON array it returns.
func (c *Client) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL, nil)
	if err != nil {
		return nil, &mirror.SyncError{Op: mirror.OpFetch, Err: err}
	}

	var records []mirror.Record
	if err := c.do(req, mirror.OpFetch, &records); err != nil {
		return nil, err
	}
	txs, err := mirror.Decode(records)
	if err != nil {
		return nil, &mirror.SyncError{Op: mirror.OpFetch, Err: err}
	}
	return txs, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &mirror.SyncError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &mirror.SyncError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response %q: %s", resp.Status, bytes.TrimSpace(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &mirror.SyncError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
