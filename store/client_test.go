package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FilesRoundTrip(t *testing.T) {
	saved := map[string]string{"a.txt": "alpha"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/files":
			var fl fileList
			for name := range saved {
				fl.Files = append(fl.Files, FileInfo{Filename: name})
			}
			fl.Total = len(fl.Files)
			_ = json.NewEncoder(w).Encode(fl)
		case r.Method == http.MethodGet && r.URL.Path == "/api/files/a.txt":
			_ = json.NewEncoder(w).Encode(fileContent{Filename: "a.txt", Content: saved["a.txt"]})
		case r.Method == http.MethodPost && r.URL.Path == "/api/files/a.txt":
			var fc fileContent
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fc))
			saved[fc.Filename] = fc.Content
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL+"/", nil)

	names, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)

	got, err := c.Load(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)

	require.NoError(t, c.Save(ctx, "a.txt", "beta"))
	assert.Equal(t, "beta", saved["a.txt"])

	_, err = c.Load(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
