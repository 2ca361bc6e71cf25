// internal/domain/push/client.go
package push

import "context"

// Notification is the payload sent to a single destination token.
type Notification struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// SendResult carries the transport's response for one send attempt.
// Body is kept for diagnostics on non-success responses.
type SendResult struct {
	StatusCode int
	Body       string
}

// OK reports whether the transport accepted the notification.
func (r *SendResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client defines an interface for delivering one push notification.
// This decouples the application logic from the concrete push provider.
type Client interface {
	// Send returns an error only for transport-level failures (the call never
	// reached the provider); a delivered-but-rejected send comes back as a
	// non-OK SendResult with a nil error.
	Send(ctx context.Context, n Notification) (*SendResult, error)
}
