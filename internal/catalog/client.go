package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cinemetric/boxoffice/pkg/config"
	"github.com/cinemetric/boxoffice/pkg/httputil"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// Client resolves and downloads the millionaire-movies extract through the
// data.gouv.fr catalog API
// SSOT: all data.gouv.fr calls go through this client
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	slug    string
}

// NewClient creates a new catalog client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		logger:  log,
		baseURL: cfg.Dataset.BaseURL,
		slug:    cfg.Dataset.Slug,
	}
}

// datasetResponse is the subset of the catalog metadata we consume
type datasetResponse struct {
	Resources []resource `json:"resources"`
}

type resource struct {
	Title  string         `json:"title"`
	URL    string         `json:"url"`
	Extras resourceExtras `json:"extras"`
}

// resourceExtras carries the verified download URL of the resource. The
// "check:url" field is the one the catalog's link checker validated, which
// the dashboard trusts over the declared resource URL.
type resourceExtras struct {
	CheckURL string `json:"check:url"`
}

// ResolveDownloadURL looks the dataset up in the catalog and returns the
// download URL of its primary tabular resource. Any failure is fatal for the
// run: network error, non-2xx response, malformed metadata or a missing URL
// field all abort, there is no partial-success mode downstream.
func (c *Client) ResolveDownloadURL(ctx context.Context) (string, error) {
	lookupURL := fmt.Sprintf("%s/api/1/datasets/%s/", c.baseURL, c.slug)

	resp, err := c.http.Get(ctx, lookupURL)
	if err != nil {
		return "", fmt.Errorf("catalog lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("catalog lookup: unexpected status %d", resp.StatusCode)
	}

	var dataset datasetResponse
	if err := json.NewDecoder(resp.Body).Decode(&dataset); err != nil {
		return "", fmt.Errorf("catalog lookup: malformed response: %w", err)
	}

	if len(dataset.Resources) == 0 {
		return "", fmt.Errorf("catalog lookup: dataset %q has no resources", c.slug)
	}

	primary := dataset.Resources[0]
	if primary.Extras.CheckURL == "" {
		return "", fmt.Errorf("catalog lookup: resource %q has no check:url", primary.Title)
	}

	c.logger.WithFields(map[string]interface{}{
		"dataset":  c.slug,
		"resource": primary.Title,
		"url":      primary.Extras.CheckURL,
	}).Info("Resolved dataset download URL")

	return primary.Extras.CheckURL, nil
}

// DownloadWorkbook fetches the spreadsheet at url and parses it
func (c *Client) DownloadWorkbook(ctx context.Context, url string) (*excelize.File, error) {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download workbook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("download workbook: unexpected status %d", resp.StatusCode)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download workbook: parse: %w", err)
	}

	return f, nil
}
