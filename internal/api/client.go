// Package api is the gateway client for the campus-info backend. It attaches
// the bearer token to outbound requests and normalizes transport outcomes
// into the shared error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"campusbuzz/internal/models"
	"campusbuzz/internal/observability"
	"campusbuzz/internal/tokenstore"
)

// Client issues single-attempt requests against a fixed base URL. Retrying is
// the caller's decision; in this system the only retry mechanism is a
// user-initiated refresh.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokenstore.Store
	log     *observability.OpLogger
}

// NewClient builds a gateway client. httpClient may be nil, in which case
// http.DefaultClient is used (no timeout beyond platform defaults).
func NewClient(baseURL string, tokens tokenstore.Store, httpClient *http.Client, logger *observability.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     observability.NewOpLogger("api", logger),
	}
}

// Response carries the normalized outcome of a 2xx response. Body is the raw
// payload; JSON reports whether the content type indicated JSON.
type Response struct {
	Status int
	Body   []byte
	JSON   bool
}

// Decode unmarshals a JSON response body into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Do issues one request. body may be nil; contentType is ignored when body is
// nil and must be empty for multipart bodies built by PostMultipart (the
// writer supplies the boundary-bearing value).
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.tokens.Read(ctx)
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
	case errors.Is(err, tokenstore.ErrNotFound):
		// Unauthenticated endpoints (login, register, OTP verify) are
		// called without the header.
	default:
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.LogError(ctx, method+" "+path, err)
		return nil, models.NewNetworkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := models.NewRequestFailedError(resp.StatusCode, string(payload))
		c.log.LogError(ctx, method+" "+path, reqErr)
		return nil, reqErr
	}

	return &Response{
		Status: resp.StatusCode,
		Body:   payload,
		JSON:   strings.Contains(resp.Header.Get("Content-Type"), "application/json"),
	}, nil
}

// GetJSON GETs path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// PostJSON POSTs payload as JSON and decodes the response into out when out
// is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// FileAttachment is an optional file part of a multipart request.
type FileAttachment struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// PostMultipart POSTs fields plus an optional file as multipart form data and
// decodes the response into out when out is non-nil. The Content-Type header
// carries the writer's boundary.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *FileAttachment, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write multipart field %q: %w", name, err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
		header.Set("Content-Type", InferImageMIME(file.FileName))
		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("create multipart file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copy multipart file content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}
