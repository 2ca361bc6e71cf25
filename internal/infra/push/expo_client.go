// internal/infra/push/expo_client.go
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainPush "forget_me_not/internal/domain/push"
)

const (
	defaultSendTimeout = 10 * time.Second
	// maxResponseBody bounds how much of the provider response is read for
	// diagnostics.
	maxResponseBody = 4 << 10
)

// ExpoClient implements the push Client interface against the Expo push HTTP API.
type ExpoClient struct {
	apiURL     string
	httpClient *http.Client
}

func NewExpoClient(apiURL string) *ExpoClient {
	return &ExpoClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultSendTimeout},
	}
}

// Send posts one notification. Transport-level problems come back as an error;
// any HTTP response, success or not, comes back as a SendResult so the caller
// can count and log it.
func (c *ExpoClient) Send(ctx context.Context, n domainPush.Notification) (*domainPush.SendResult, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}

	return &domainPush.SendResult{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
