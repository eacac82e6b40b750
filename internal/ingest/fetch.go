package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher downloads a scraped JSON payload over HTTP and extracts records
// from it, so hosted scraper output can feed the same import path as files.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Fetcher{client: client}
}

// FetchRecords downloads url and returns its records plus the transaction
// kind hint inferred from the url itself.
func (f *Fetcher) FetchRecords(ctx context.Context, url string) ([]Record, string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}

	records, err := ExtractRecords(resp.Body())
	if err != nil {
		return nil, "", err
	}
	return records, DetectTransactionKind(url), nil
}
