// Package clip talks to a local zero-shot image classification sidecar
// (a CLIP model behind a small HTTP server). The model load is expensive, so
// it happens lazily on first use and at most once per process; a failed load
// is cached and reported as "no classifier" rather than retried.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const DefaultModel = "openai/clip-vit-base-patch32"

// ErrUnavailable wraps every initialization failure: the process keeps running
// with no classifier instead of aborting.
var ErrUnavailable = errors.New("no classifier available")

type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Classifier struct {
	baseURL string
	httpc   *http.Client

	loadOnce sync.Once
	loadErr  error
}

func New(baseURL string) *Classifier {
	return &Classifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Classifier) ensureLoaded(ctx context.Context) error {
	c.loadOnce.Do(func() {
		body, _ := json.Marshal(map[string]string{"model": DefaultModel})
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/load", bytes.NewReader(body))
		if err != nil {
			c.loadErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpc.Do(req)
		if err != nil {
			c.loadErr = fmt.Errorf("%w: clip load: %v", ErrUnavailable, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			x, _ := io.ReadAll(resp.Body)
			c.loadErr = fmt.Errorf("%w: clip load %d: %s", ErrUnavailable, resp.StatusCode, string(x))
		}
	})
	return c.loadErr
}

// Classify ranks the fixed label set against the image, best first.
func (c *Classifier) Classify(ctx context.Context, image []byte, labels []string) ([]Prediction, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"image_b64": base64.StdEncoding.EncodeToString(image),
		"labels":    labels,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("clip classify %d: %s", resp.StatusCode, string(x))
	}

	var out struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Predictions) == 0 {
		return nil, fmt.Errorf("clip classify: empty prediction list")
	}
	return out.Predictions, nil
}
