package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	APIVersion     = "2022-06-28"
)

// Client is a minimal Notion API client for database rows
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a Notion client authenticated with token
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetAuthToken(token).
		SetHeader("Notion-Version", APIVersion).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// QueryDatabase returns one page of results for req
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) (*QueryResponse, error) {
	var result QueryResponse
	var apiErr APIError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("database_id", databaseID).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/databases/{database_id}/query")
	if err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
	}
	if resp.IsError() {
		c.logger.Error("Notion database query failed",
			zap.String("database_id", databaseID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("code", apiErr.Code),
		)
		return nil, normalize(&apiErr, resp)
	}

	c.logger.Debug("Queried Notion database",
		zap.String("database_id", databaseID),
		zap.Int("results", len(result.Results)),
		zap.Bool("has_more", result.HasMore),
	)
	return &result, nil
}

// QueryAll follows the query cursor until every matching page is read
func (c *Client) QueryAll(ctx context.Context, databaseID string, req QueryRequest) ([]Page, error) {
	var pages []Page
	for {
		result, err := c.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, result.Results...)
		if !result.HasMore || result.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = result.NextCursor
	}
}

// CreatePage creates a page and returns it as stored by Notion
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var page Page
	var apiErr APIError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&page).
		SetError(&apiErr).
		Post("/v1/pages")
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("Notion page creation failed",
			zap.String("database_id", req.Parent.DatabaseID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("code", apiErr.Code),
		)
		return nil, normalize(&apiErr, resp)
	}
	return &page, nil
}

// normalize fills in status details when the error body was not JSON
func normalize(apiErr *APIError, resp *resty.Response) *APIError {
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode()
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}
