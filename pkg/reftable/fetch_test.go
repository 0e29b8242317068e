package reftable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, zap.NewNop())
	table, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestFetchRetriesOnceThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, zap.NewNop())
	table, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchGivesUpAfterOneRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "initial attempt plus exactly one retry")
}

func TestFetchInvalidContentNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("Colonne,Inattendue\nx,y\n"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Equal(t, int32(1), calls.Load(), "validation failures are final")
}

func TestFetcherDefaults(t *testing.T) {
	f := NewFetcher("", 0, nil)
	assert.Equal(t, DefaultURL, f.url)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
	assert.NotNil(t, f.logger)
}
