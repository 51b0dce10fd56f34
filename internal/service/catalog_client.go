package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"pokeguess/internal/config"
	"pokeguess/internal/model"
)

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 1 << 20

// CatalogClient wraps the upstream creature catalog API
type CatalogClient struct {
	cfg        *config.UpstreamConfig
	httpClient *http.Client
}

// NewCatalogClient creates a new catalog API client
func NewCatalogClient(cfg *config.UpstreamConfig) *CatalogClient {
	return &CatalogClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// catalogSubject is the part of a catalog subject we read
type catalogSubject struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        map[string]struct {
			FrontDefault string `json:"front_default"`
		} `json:"other"`
	} `json:"sprites"`
}

// imageRef prefers the official artwork and falls back to the default sprite
func (s *catalogSubject) imageRef() string {
	if art, ok := s.Sprites.Other["official-artwork"]; ok && art.FrontDefault != "" {
		return art.FrontDefault
	}
	return s.Sprites.FrontDefault
}

// catalogList is the response of the list endpoint
type catalogList struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

// get performs one GET without retries; retry policy belongs to the refiller
func (c *CatalogClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: response larger than %d bytes", ErrInvalidPayload, maxResponseBytes)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	return body, nil
}

// Fetch retrieves one catalog subject and normalizes it into a round
func (c *CatalogClient) Fetch(ctx context.Context, id int) (*model.RoundRecord, error) {
	body, err := c.get(ctx, c.cfg.SubjectEndpoint(id))
	if err != nil {
		return nil, fmt.Errorf("fetch subject %d: %w", id, err)
	}

	var subject catalogSubject
	if err := json.Unmarshal(body, &subject); err != nil {
		return nil, fmt.Errorf("%w: subject %d: %v", ErrInvalidPayload, id, err)
	}
	if subject.ID == 0 {
		subject.ID = id
	}

	round := &model.RoundRecord{
		ExternalID:  subject.ID,
		DisplayName: subject.Name,
		ImageRef:    subject.imageRef(),
	}
	if !round.Valid() {
		return nil, fmt.Errorf("%w: subject %d has no usable name or image", ErrInvalidPayload, id)
	}
	return round, nil
}

// ListNames returns the names of the first limit catalog subjects
func (c *CatalogClient) ListNames(ctx context.Context, limit int) ([]string, error) {
	body, err := c.get(ctx, c.cfg.ListEndpoint(limit))
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	var list catalogList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: subject list: %v", ErrInvalidPayload, err)
	}

	names := make([]string, 0, len(list.Results))
	for _, r := range list.Results {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	log.Printf("[Catalog] Loaded %d subject names", len(names))
	return names, nil
}
