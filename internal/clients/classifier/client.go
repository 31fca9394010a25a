package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sahanw/arogya-backend/internal/pkg/httpx"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// Prediction is the classifier's stage output for one feature vector.
type Prediction struct {
	Stage         int       `json:"stage"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// Client calls the pretrained stage classifier. It is a black box: a full
// feature vector in, a discrete stage 0-3 plus per-class probabilities out.
type Client interface {
	Predict(ctx context.Context, vector map[string]float64) (Prediction, error)
	FeatureNames(ctx context.Context) ([]string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("CLASSIFIER_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing CLASSIFIER_BASE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 15
	if v := os.Getenv("CLASSIFIER_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 2
	if v := os.Getenv("CLASSIFIER_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	return &client{
		log:        log.With("service", "ClassifierClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type classifierHTTPError struct {
	StatusCode int
	Body       string
}

func (e *classifierHTTPError) Error() string {
	return fmt.Sprintf("classifier http %d: %s", e.StatusCode, e.Body)
}

func (e *classifierHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("classifier decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("Classifier request retrying",
			"path", path,
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &classifierHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

func (c *client) Predict(ctx context.Context, vector map[string]float64) (Prediction, error) {
	var out Prediction
	if len(vector) == 0 {
		return out, fmt.Errorf("empty feature vector")
	}
	if err := c.do(ctx, "POST", "/predict", predictRequest{Features: vector}, &out); err != nil {
		return out, err
	}
	if out.Stage < 0 || out.Stage > 3 {
		return out, fmt.Errorf("classifier returned stage %d outside 0-3", out.Stage)
	}
	return out, nil
}

type featureNamesResponse struct {
	FeatureNames []string `json:"feature_names"`
}

func (c *client) FeatureNames(ctx context.Context) ([]string, error) {
	var out featureNamesResponse
	if err := c.do(ctx, "GET", "/features", nil, &out); err != nil {
		return nil, err
	}
	return out.FeatureNames, nil
}
