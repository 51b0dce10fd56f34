package config

import (
	"fmt"
	"time"
)

// UpstreamConfig holds the catalog API settings
type UpstreamConfig struct {
	BaseURL   string `json:"baseUrl"`
	TimeoutMS int    `json:"timeoutMs"`

	// Valid id range for random round picks (inclusive)
	MinID int `json:"minId"`
	MaxID int `json:"maxId"`
}

// DefaultUpstreamConfig returns the default catalog configuration
func DefaultUpstreamConfig() *UpstreamConfig {
	return &UpstreamConfig{
		BaseURL:   "https://pokeapi.co/api/v2",
		TimeoutMS: 10000, // 10 second default timeout
		MinID:     1,
		MaxID:     386,
	}
}

// Timeout returns the per-request timeout
func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SubjectEndpoint returns the URL of one catalog subject
func (c *UpstreamConfig) SubjectEndpoint(id int) string {
	return fmt.Sprintf("%s/pokemon/%d", c.BaseURL, id)
}

// ListEndpoint returns the URL listing the first limit subjects
func (c *UpstreamConfig) ListEndpoint(limit int) string {
	return fmt.Sprintf("%s/pokemon?limit=%d", c.BaseURL, limit)
}
