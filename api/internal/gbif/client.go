package gbif

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultEndpoint = "https://api.gbif.org/v1/occurrence/download/request"

// StatusError carries the upstream status code and body of a rejected
// download request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gbif download request: status %d: %s", e.Code, e.Body)
}

type Client struct {
	Endpoint string
	creds    Credentials
	httpc    *http.Client
}

func NewClient(creds Credentials) *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		creds:    creds,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SubmitDownload posts the request with basic auth. A 202 yields the opaque
// download key; anything else is a StatusError.
func (c *Client) SubmitDownload(ctx context.Context, dr DownloadRequest) (string, error) {
	payload, err := json.Marshal(dr)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("contact gbif: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	key := strings.TrimSpace(string(body))
	if key == "" {
		return "", fmt.Errorf("gbif accepted the request but returned no download key")
	}
	return key, nil
}
