package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
)

var (
	ErrServiceUnavailable = errors.New("ai service unavailable")
	ErrUpload             = errors.New("file upload failed")
	ErrRequest            = errors.New("ai request failed")
)

// maxErrorBody bounds how much of a failed response is kept for logs.
const maxErrorBody = 512

// Client talks to the external AI service. Every call is a single exchange
// with no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. timeout bounds each exchange; zero means
// no limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Ping succeeds only when the service answers 200.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[gateway] ping failed: %v", err)
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[gateway] ping returned status=%d", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// UploadFile sends a data file and returns the backend's file id.
func (c *Client) UploadFile(ctx context.Context, upload chat.Upload) (string, error) {
	filename, mimeType := upload.Filename, upload.MimeType
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-data-file", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var payload struct {
		FileID string `json:"file_id"`
	}
	if err := c.do(req, &payload); err != nil {
		log.Printf("[gateway] upload of %s failed: %v", filename, err)
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if payload.FileID == "" {
		return "", fmt.Errorf("%w: response has no file_id", ErrUpload)
	}

	log.Printf("[gateway] uploaded %s as file_id=%s", filename, payload.FileID)
	return payload.FileID, nil
}

// SubmitPrompt sends p to the endpoint of its mode.
func (c *Client) SubmitPrompt(ctx context.Context, p Prompt) (Reply, error) {
	buf, err := json.Marshal(p.payload())
	if err != nil {
		return Reply{}, fmt.Errorf("%w: encode request: %v", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+p.endpoint(), bytes.NewReader(buf))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload aiResponse
	if err := c.do(req, &payload); err != nil {
		log.Printf("[gateway] %s failed: %v", p.endpoint(), err)
		return Reply{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	log.Printf("[gateway] %s answered, model=%s, context=%d", p.endpoint(), payload.Config.AIModelName, len(payload.UpdatedContext))
	return Reply{
		Text:    payload.Response,
		Context: payload.UpdatedContext.Clone(),
		Config:  payload.Config,
	}, nil
}

// do executes req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
