package remote

import (
	"net/http"
	"time"
)

// Config holds the connection settings for the backend services.
type Config struct {
	SprintsURL       string
	TasksURL         string
	ProjectsURL      string
	NotificationsURL string

	// Token is sent as a bearer credential when non-empty.
	Token      string
	Timeout    time.Duration
	MaxRetries int // applies to GET requests only

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns settings for a local development deployment.
func DefaultConfig() Config {
	return Config{
		SprintsURL:       "http://localhost:8084",
		TasksURL:         "http://localhost:8085",
		ProjectsURL:      "http://localhost:8083",
		NotificationsURL: "http://localhost:8089",
		Timeout:          5 * time.Second,
		MaxRetries:       1,
	}
}
