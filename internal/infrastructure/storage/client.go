package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainerrors "hack-portal.backend/internal/domain/errors"
)

// Client talks to the object store collaborator (a Supabase-storage
// style REST API). The portal streams resume bytes through it and hands
// out signed URLs; it never inspects file contents.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a new object store client
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload stores an object and returns its canonical key path.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Overwrite on re-upload; one resume per applicant.
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.ErrProvider
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domainerrors.ErrProvider
	}
	return bucket + "/" + key, nil
}

// SignedURL returns a time-limited download URL for an object.
func (c *Client) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int64{"expiresIn": int64(ttl.Seconds())})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.baseURL, bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.ErrProvider
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domainerrors.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", domainerrors.ErrProvider
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domainerrors.ErrProvider
	}
	return c.baseURL + "/storage/v1" + result.SignedURL, nil
}
