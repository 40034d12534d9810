package metabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/httputil"
	"github.com/novopnp/painel/pkg/logger"
)

const sampleExport = `Institution,Unit,Scope,Status,Total
IFPB,Campus A,enrollment,flagged,10
IFPB,Campus A,enrollment,amended,4
IFSP,Campus C,staff,validated,0
`

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Metabase: config.MetabaseConfig{
			BaseURL:   serverURL,
			APIKey:    "test-key",
			CardID:    71,
			RateLimit: 100,
		},
	}
	log := logger.New(cfg)

	return NewClient(cfg, httputil.New(log).DisableRetry(), log)
}

func TestFetchExport(t *testing.T) {
	var gotPath, gotKey, gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleExport))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	rows, err := client.FetchExport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/card/71/query/csv", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, http.MethodPost, gotMethod)

	require.Len(t, rows, 3)
	assert.Equal(t, "IFPB", rows[0].Institution)
	assert.Equal(t, "Campus A", rows[0].Unit)
	assert.Equal(t, "enrollment", rows[0].Scope)
	assert.Equal(t, "flagged", rows[0].Status)
	assert.Equal(t, 10, rows[0].Count)
	assert.Equal(t, 0, rows[2].Count)
}

func TestFetchExportUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "card not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.FetchExport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDecodeRowsBadCount(t *testing.T) {
	body := "Institution,Unit,Scope,Status,Total\nIFPB,Campus A,enrollment,flagged,many\n"

	_, err := decodeRows(strings.NewReader(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeRowsWrongColumnCount(t *testing.T) {
	body := "Institution,Unit,Scope\nIFPB,Campus A,enrollment\n"

	_, err := decodeRows(strings.NewReader(body))
	assert.Error(t, err)
}

func TestDecodeRowsEmptyBody(t *testing.T) {
	_, err := decodeRows(strings.NewReader(""))
	assert.Error(t, err)
}
