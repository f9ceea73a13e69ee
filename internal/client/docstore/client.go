// Package docstore is the client SDK of the document store HTTP API.
package docstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/GophRoster/internal/models"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// StatusError reports an unexpected HTTP status from the store.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("docstore: status %d: %s", e.Code, e.Message)
}

// Options configure a Client.
type Options struct {
	// BaseURL is the server root, e.g. https://localhost:8080.
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// CAFile is a PEM bundle of trusted roots; empty uses the system roots.
	CAFile string
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
	// HTTPClient overrides the transport entirely when set.
	HTTPClient *http.Client
}

// Client talks to the document store over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("docstore: empty base URL")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("docstore: parse base URL: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		var err error
		if hc, err = newHTTPClient(opts.CAFile, opts.Timeout); err != nil {
			return nil, err
		}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    hc,
	}, nil
}

func newHTTPClient(caFile string, timeout time.Duration) (*http.Client, error) {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if caFile == "" {
		return &http.Client{Timeout: timeout}, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// ListAll fetches every document of the collection.
func (c *Client) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	var docs []models.Document
	if err := c.do(ctx, http.MethodGet, c.documentsURL(collection), nil, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Create stores fields as a new document and returns the assigned id.
func (c *Client) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.documentsURL(collection), fields, &resp); err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return resp.ID, nil
}

// UpdateFields merges fields into the document with the given id.
func (c *Client) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := c.do(ctx, http.MethodPatch, c.documentURL(collection, id), fields, nil); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document with the given id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.documentURL(collection, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) documentsURL(collection string) string {
	return c.baseURL + "/api/collections/" + url.PathEscape(collection) + "/documents"
}

func (c *Client) documentURL(collection, id string) string {
	return c.documentsURL(collection) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
