// Package client calls the book endpoints over HTTP. The presentation
// layer uses it against the relay or the combined router.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"books-backend/domain/book"
)

// Error is a non-2xx answer from the API
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("books API returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a thin JSON client for the five book operations
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetBook fetches one book
func (c *Client) GetBook(ctx context.Context, id string) (book.Book, error) {
	var b book.Book
	err := c.do(ctx, http.MethodGet, "/getBook/"+url.PathEscape(id), nil, &b)
	return b, err
}

// GetBooks lists all books, or those of one author
func (c *Client) GetBooks(ctx context.Context, author string) ([]book.Book, error) {
	path := "/getBooks"
	if author != "" {
		path += "?" + url.Values{"author": {author}}.Encode()
	}
	var books []book.Book
	if err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CreateBook stores a new book and returns it with its identifier
func (c *Client) CreateBook(ctx context.Context, fields book.Fields) (book.Book, error) {
	var created book.Book
	err := c.do(ctx, http.MethodPost, "/createBook", fields, &created)
	return created, err
}

// UpdateBook overwrites the book identified by b.ID
func (c *Client) UpdateBook(ctx context.Context, b book.Book) (book.Book, error) {
	var updated book.Book
	err := c.do(ctx, http.MethodPut, "/updateBook/"+url.PathEscape(b.ID), b, &updated)
	return updated, err
}

// DeleteBook removes a book
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/deleteBook/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
