// Package iucn fetches the Red List species/category listing and serializes
// it for the raw-data bucket. The job runs to completion or fails entirely.
package iucn

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Species struct {
	ScientificName string `json:"scientific_name"`
	Category       string `json:"category"`
}

type Client struct {
	BaseURL string
	Token   string
	httpc   *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Species fetches the full species list from the token-authenticated endpoint.
func (c *Client) Species(ctx context.Context) ([]Species, error) {
	u := c.BaseURL + "/api/v3/species?token=" + url.QueryEscape(c.Token)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact iucn: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("iucn species: status %d: %s", resp.StatusCode, string(x))
	}

	var out struct {
		Result []Species `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("iucn species: decode: %w", err)
	}
	return out.Result, nil
}

// WriteCSV emits the two-column tabular form uploaded to storage.
func WriteCSV(w io.Writer, list []Species) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scientific_name", "category"}); err != nil {
		return err
	}
	for _, sp := range list {
		if err := cw.Write([]string{sp.ScientificName, sp.Category}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
