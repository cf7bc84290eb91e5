// Package model talks to the model server that hosts the trained retweet
// regressor and provides the evaluation helpers used around it.
package model

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/retweets/internal/domain"
)

// Predictor scores padded token sequences. Each row yields one value.
type Predictor interface {
	Predict(ctx context.Context, sequences [][]int) ([]float64, error)
}

// ClientConfig holds configuration for the model server client.
type ClientConfig struct {
	BaseURL string
	Name    string
	Version string
	Timeout time.Duration
}

// Client calls a TensorFlow Serving REST endpoint.
type Client struct {
	client *resty.Client
	name   string
	path   string
}

// NewClient creates a model server client.
// Parameters:
//   - cfg: server address, model name and optional pinned version.
// Returns:
//   - *Client: client ready for Status and Predict calls.
//   - error: non-nil if the base URL or model name is empty.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Name == "" {
		return nil, fmt.Errorf("model server url and name are required: %w", domain.ErrInvalidInput)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	path := "/v1/models/" + cfg.Name
	if cfg.Version != "" {
		path += "/versions/" + cfg.Version
	}

	return &Client{client: client, name: cfg.Name, path: path}, nil
}

type statusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

type predictRequest struct {
	Instances [][]int `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Status checks that at least one version of the model is loaded.
// A model the server does not know, or has not finished loading, yields ErrNotFound.
func (c *Client) Status(ctx context.Context) error {
	var resp statusResponse
	var apiErr errorResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetResult(&resp).
		SetError(&apiErr).
		Get(c.path)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", joinExternal(err))
	}
	if httpResp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("model %s: %w", c.name, domain.ErrNotFound)
	}
	if httpResp.IsError() {
		return fmt.Errorf("model server status %d %s: %w", httpResp.StatusCode(), apiErr.Error, domain.ErrExternalService)
	}

	for _, v := range resp.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return nil
		}
	}
	return fmt.Errorf("model %s has no available version: %w", c.name, domain.ErrNotFound)
}

// Predict sends sequences to the model and returns one score per row.
func (c *Client) Predict(ctx context.Context, sequences [][]int) ([]float64, error) {
	if len(sequences) == 0 {
		return nil, nil
	}

	var resp predictResponse
	var apiErr errorResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Instances: sequences}).
		SetResult(&resp).
		SetError(&apiErr).
		Post(c.path + ":predict")
	if err != nil {
		return nil, fmt.Errorf("model server unreachable: %w", joinExternal(err))
	}
	if httpResp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("model %s: %w", c.name, domain.ErrNotFound)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("model server status %d %s: %w", httpResp.StatusCode(), apiErr.Error, domain.ErrExternalService)
	}
	if len(resp.Predictions) != len(sequences) {
		return nil, fmt.Errorf("model returned %d predictions for %d inputs: %w",
			len(resp.Predictions), len(sequences), domain.ErrExternalService)
	}

	out := make([]float64, len(resp.Predictions))
	for i, p := range resp.Predictions {
		if len(p) == 0 {
			return nil, fmt.Errorf("empty prediction at row %d: %w", i, domain.ErrExternalService)
		}
		out[i] = p[0]
	}
	return out, nil
}

func joinExternal(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrExternalService, err)
}
