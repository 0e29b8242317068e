package reftable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// DefaultURL points at the published IFS v8 requirement table.
const DefaultURL = "https://raw.githubusercontent.com/M00N69/Gemini-Knowledge/main/IFSV8listeNCetchapitres.csv"

// DefaultTimeout bounds one fetch attempt end to end.
const DefaultTimeout = 10 * time.Second

// maxTableBytes caps the response body; the real table is under 1 MiB.
const maxTableBytes = 16 << 20

// Fetcher downloads the requirement table over HTTP. Transient failures are
// retried exactly once; after that the caller is expected to continue
// without a table rather than fail the whole extraction.
type Fetcher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewFetcher builds a Fetcher for url. A zero timeout falls back to
// DefaultTimeout, a nil logger to zap.NewNop.
func NewFetcher(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch downloads and parses the table. Network errors and bad statuses get
// one retry; a file that downloads fine but fails validation does not, since
// the published content will not change between attempts.
func (f *Fetcher) Fetch(ctx context.Context) (*Table, error) {
	var table *Table
	backoff := retry.WithMaxRetries(1, retry.NewConstant(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := f.download(ctx)
		if err != nil {
			f.logger.Warn("requirement table download failed",
				zap.String("url", f.url),
				zap.Error(err))
			return retry.RetryableError(err)
		}

		t, err := Parse(body)
		if err != nil {
			return err
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info("requirement table loaded",
		zap.String("url", f.url),
		zap.Int("rows", table.Stats.Kept),
		zap.Int("droppedBlank", table.Stats.DroppedBlank),
		zap.Int("duplicates", table.Stats.Duplicates))
	return table, nil
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
