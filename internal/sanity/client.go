package sanity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/campuspress/newsroom/pkg/config"
	"github.com/campuspress/newsroom/pkg/logging"
	"github.com/campuspress/newsroom/pkg/telemetry"
)

// ContentQuery is the GROQ query for syncable newsroom content.
// Field names follow the Sanity studio schema.
const ContentQuery = `*[_type in ["Post", "Opinion"]] | order(_createdAt desc){
  _id,
  _type,
  title,
  "slug": slug.current,
  "author": author->name
}`

// ContentItem is one CMS document as returned by the query endpoint
type ContentItem struct {
	ID     string `json:"_id"`
	Type   string `json:"_type"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Author string `json:"author"`
}

// queryResponse is the envelope of the Sanity HTTP query API
type queryResponse struct {
	Result []ContentItem `json:"result"`
	MS     int64         `json:"ms"`
}

// Client calls the Sanity HTTP query API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new Sanity client
func New(cfg *config.SanityConfig) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("sanity_project_id is required")
	}

	logger := logging.GetLogger().With(zap.String("component", "sanity-client"))

	baseURL := fmt.Sprintf("https://%s.api.sanity.io/v%s/data/query/%s",
		cfg.ProjectID, cfg.APIVersion, cfg.Dataset)

	client := &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	logger.Info("Sanity client initialized",
		zap.String("project", cfg.ProjectID),
		zap.String("dataset", cfg.Dataset))

	return client, nil
}

// NewWithBaseURL builds a client against an explicit endpoint. Used by tests.
func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.GetLogger().With(zap.String("component", "sanity-client")),
	}
}

// FetchContent runs the content query and returns all syncable documents
func (c *Client) FetchContent(ctx context.Context) ([]ContentItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "sanity.fetch_content")
	defer span.End()

	return c.Query(ctx, ContentQuery)
}

// Query runs an arbitrary GROQ query against the dataset
func (c *Client) Query(ctx context.Context, groq string) ([]ContentItem, error) {
	endpoint := c.baseURL + "?query=" + url.QueryEscape(groq)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity query failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sanity response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Sanity query returned non-200",
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("sanity query returned status %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sanity response: %w", err)
	}

	return parsed.Result, nil
}
