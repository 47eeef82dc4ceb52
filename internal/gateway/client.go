// Package gateway is the client side of the comments backend: thin HTTP and WebSocket
// wrappers with no business logic.
package gateway

import (
	"CommentWall/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for the backend rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		log:     log.Named("gateway"),
	}
}

// FetchComments returns the current page of comments, newest first.
func (c *Client) FetchComments(ctx context.Context) ([]models.Comment, error) {
	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments", nil, "", &resp); err != nil {
		c.log.Error("Failed to fetch comments", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return resp.Comments, nil
}

// CreateComment stores a comment. A nil comment with a nil error means the backend
// accepted the request without sending the record back.
func (c *Client) CreateComment(ctx context.Context, cr models.CommentRequest) (*models.Comment, error) {
	body, err := json.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	var resp struct {
		Comment *models.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPost, "/comments", bytes.NewReader(body), "application/json", &resp); err != nil {
		c.log.Error("Failed to create comment", zap.Error(err))
		return nil, err
	}
	return resp.Comment, nil
}

// UploadImage stores a profile photo and returns its public URL. Images over
// models.MaxImageBytes are refused without contacting the backend.
func (c *Client) UploadImage(ctx context.Context, img models.Image) (string, error) {
	switch {
	case img.Size() == 0:
		return "", ErrEmptyImage
	case img.Size() > models.MaxImageBytes:
		return "", ErrImageTooLarge
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", img.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := fw.Write(img.Data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/images", &buf, mw.FormDataContentType(), &resp); err != nil {
		c.log.Error("Failed to upload image", zap.String("name", img.Name), zap.Error(err))
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("backend returned no image url")
	}
	return resp.URL, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
