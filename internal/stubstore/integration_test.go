package stubstore

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pocket-migrate/internal/importers"
	"github.com/mrlokans/pocket-migrate/internal/supabase"
)

func writeUnreadFile(t *testing.T, urls []string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("title,url,time_added,tags,status,source_file\n")
	for i, u := range urls {
		fmt.Fprintf(&b, "Link %d,%s,%d,,unread,part_000000.csv\n", i+1, u, 1700000000+i)
	}
	path := filepath.Join(t.TempDir(), "pocket_unread_links.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestImportAgainstStub_FallbackSplitsBadLinks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemory()
	server := httptest.NewServer(NewRouter(NewController(store, Options{
		APIKey:              "anon",
		RejectURLContaining: "broken",
	}, nil)))
	defer server.Close()

	path := writeUnreadFile(t, []string{
		"http://example.com/1",
		"http://example.com/broken",
		"http://example.com/3",
		"http://example.com/4",
		"http://example.com/5",
	})

	client := supabase.NewClient(server.URL, "anon", "links", time.Second)
	converter := importers.NewConverter(importers.LinkDefaults{UserID: "user-1", List: "read", Status: "unread", Device: "import_script"})
	importer := importers.NewImporter(client, converter, importers.Approve, importers.Options{BatchSize: 3})

	result, err := importer.Run(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Loaded)
	assert.Equal(t, 2, result.Batches)
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"Individual 2 failed: 400 - http://example.com/broken"}, result.Errors)
	assert.Len(t, result.BatchFailures, 1)
	assert.Equal(t, 4, store.Count("links"))

	for _, row := range store.Rows("links") {
		assert.Equal(t, "user-1", row["user_id"])
		assert.Nil(t, row["resolved_url"])
	}
}

func TestImportAgainstStub_WrongKeyAbortsBeforeLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemory()
	server := httptest.NewServer(NewRouter(NewController(store, Options{APIKey: "anon"}, nil)))
	defer server.Close()

	client := supabase.NewClient(server.URL, "wrong", "links", time.Second)
	importer := importers.NewImporter(client, importers.NewConverter(importers.LinkDefaults{}), importers.Approve, importers.Options{})

	result, err := importer.Run(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))

	assert.ErrorIs(t, err, importers.ErrConnectionUnavailable)
	assert.Zero(t, result.Loaded)
	assert.Zero(t, store.Count("links"))
}

func TestImportAgainstStub_UnreachableStoreAbortsBeforeLoad(t *testing.T) {
	server := httptest.NewServer(NewRouter(NewController(NewMemory(), Options{}, nil)))
	url := server.URL
	server.Close()

	path := writeUnreadFile(t, []string{"http://example.com/1"})
	client := supabase.NewClient(url, "anon", "links", time.Second)
	importer := importers.NewImporter(client, importers.NewConverter(importers.LinkDefaults{}), importers.Approve, importers.Options{})

	result, err := importer.Run(context.Background(), path)

	assert.ErrorIs(t, err, importers.ErrConnectionUnavailable)
	var transport *supabase.TransportError
	assert.ErrorAs(t, err, &transport)
	assert.Equal(t, importers.StageConnectionCheck, result.Stage)
	assert.Zero(t, result.Loaded)
	assert.Zero(t, result.Attempted)
}
