package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store is the narrow contract the pipeline needs from blob storage: fetch an
// uploaded object by its URL and delete it once extraction has succeeded.
type Store interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
	Delete(ctx context.Context, url string) error
}

// maxFetchBytes bounds how much of an uploaded object is read into memory.
const maxFetchBytes = 100 << 20

// HTTPStore talks to an HTTP blob service. Objects are addressed by full URL;
// deletion requires the read-write token.
type HTTPStore struct {
	token  string
	client *http.Client
}

// NewHTTPStore configures a blob store client. A nil HTTP client gets a
// default with a generous timeout, since media objects can be large.
func NewHTTPStore(token string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &HTTPStore{token: strings.TrimSpace(token), client: client}
}

// Fetch downloads the object and reports its declared content type.
func (s *HTTPStore) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("blob: build fetch request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("blob: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("blob: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("blob: read body: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, "", errors.New("blob: object exceeds size limit")
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// Delete removes the object. Callers treat failures as non-fatal cleanup
// errors.
func (s *HTTPStore) Delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("blob: build delete request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("blob: delete %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("blob: delete %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}

var _ Store = (*HTTPStore)(nil)
