package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domain "github.com/mhollis/stocksync/pkg/types"
)

const defaultPageSize = 100

// ErrProviderFault is returned when a well-formed page carries a
// provider-side error flag.
var ErrProviderFault = errors.New("provider signaled error")

// Fetcher pages through the provider's stock records.
type Fetcher struct {
	client   Client
	logger   *slog.Logger
	pageSize int
}

// FetcherOption configures the Fetcher.
type FetcherOption func(*Fetcher)

// WithPageSize overrides the default page size.
func WithPageSize(size int) FetcherOption {
	return func(f *Fetcher) {
		f.pageSize = size
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   client,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult holds the outcome of a full stock fetch.
type FetchResult struct {
	Records   []domain.StockRecord
	Pages     int
	StoppedAt string // "no_more_pages", "provider_error"
}

// FetchAll fetches every stock page starting at page 1. On a provider
// error it stops immediately and returns the records accumulated so far
// together with a non-nil error; retry policy belongs to the caller.
func (f *Fetcher) FetchAll(ctx context.Context) (*FetchResult, error) {
	return f.FetchFrom(ctx, 1)
}

// FetchFrom fetches pages starting at the given page number. Page numbers
// below 1 are coerced to 1. The loop terminates only when a page reports
// no further data or an error occurs; there is no artificial page cap.
func (f *Fetcher) FetchFrom(ctx context.Context, page int) (*FetchResult, error) {
	if page < 1 {
		page = 1
	}

	result := &FetchResult{}

	for {
		resp, err := f.client.FetchPage(ctx, PageRequest{
			Page:     page,
			PageSize: f.pageSize,
		})
		if err != nil {
			// A malformed or unreachable page aborts the whole fetch.
			result.StoppedAt = "provider_error"
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}

		if resp.IsError {
			result.StoppedAt = "provider_error"
			return result, fmt.Errorf(
				"fetching page %d: %w: %s",
				page, ErrProviderFault, resp.ErrorMessage,
			)
		}

		result.Pages++
		result.Records = append(result.Records, ToStockRecords(resp.Items)...)

		if f.logger != nil {
			f.logger.Debug("fetched stock page",
				"page", page,
				"records", len(resp.Items),
				"has_more", resp.HasMore,
			)
		}

		if !resp.HasMore {
			result.StoppedAt = "no_more_pages"
			return result, nil
		}

		page++
	}
}
