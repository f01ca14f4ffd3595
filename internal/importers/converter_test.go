package importers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

func TestUnixToISO(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	nowISO := "2025-06-01T10:30:00+00:00"

	tests := []struct {
		name         string
		input        string
		want         string
		wantFallback bool
	}{
		{name: "epoch", input: "0", want: "1970-01-01T00:00:00+00:00"},
		{name: "small value", input: "100", want: "1970-01-01T00:01:40+00:00"},
		{name: "typical pocket value", input: "1700000000", want: "2023-11-14T22:13:20+00:00"},
		{name: "last representable second", input: "253402300799", want: "9999-12-31T23:59:59+00:00"},
		{name: "empty", input: "", want: nowISO, wantFallback: true},
		{name: "text", input: "not-a-number", want: nowISO, wantFallback: true},
		{name: "negative", input: "-5", want: nowISO, wantFallback: true},
		{name: "explicit plus sign", input: "+5", want: nowISO, wantFallback: true},
		{name: "fractional", input: "1.5", want: nowISO, wantFallback: true},
		{name: "surrounding space", input: " 100", want: nowISO, wantFallback: true},
		{name: "beyond year 9999", input: "253402300800", want: nowISO, wantFallback: true},
		{name: "int64 overflow", input: "99999999999999999999", want: nowISO, wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := UnixToISO(tt.input, now)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFallback, fallback)

			parsed, err := time.Parse(time.RFC3339, got)
			require.NoError(t, err, "output must be valid ISO-8601")
			_, offset := parsed.Zone()
			assert.Equal(t, 0, offset)
		})
	}
}

func TestConverter_Convert(t *testing.T) {
	converter := NewConverter(LinkDefaults{
		UserID: "user-1",
		List:   "read",
		Status: "unread",
		Device: "import_script",
	})
	converter.newID = func() string { return "fixed-id" }

	link, fallback := converter.Convert(entities.PocketLink{
		Title:      "Go Proverbs",
		URL:        "https://go-proverbs.github.io/",
		TimeAdded:  "100",
		Tags:       "go",
		Status:     "unread",
		SourceFile: "part_000000.csv",
	})

	assert.False(t, fallback)
	require.NotNil(t, link.Title)
	assert.Equal(t, entities.Link{
		ID:          "fixed-id",
		UserID:      "user-1",
		RawURL:      "https://go-proverbs.github.io/",
		ResolvedURL: nil,
		Title:       link.Title,
		List:        "read",
		Status:      "unread",
		DeviceSaved: "import_script",
		CreatedAt:   "1970-01-01T00:01:40+00:00",
	}, link)
	assert.Equal(t, "Go Proverbs", *link.Title)
}

func TestConverter_EmptyTitleIsNull(t *testing.T) {
	converter := NewConverter(LinkDefaults{})

	link, _ := converter.Convert(entities.PocketLink{URL: "http://x", TimeAdded: "1"})

	assert.Nil(t, link.Title)
	assert.Nil(t, link.ResolvedURL)
}

func TestConverter_FallbackUsesClock(t *testing.T) {
	converter := NewConverter(LinkDefaults{})
	converter.now = func() time.Time { return time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC) }

	link, fallback := converter.Convert(entities.PocketLink{URL: "http://x", TimeAdded: "yesterday"})

	assert.True(t, fallback)
	assert.Equal(t, "2024-02-29T08:00:00+00:00", link.CreatedAt)
}

func TestConverter_GeneratesUniqueUUIDs(t *testing.T) {
	converter := NewConverter(LinkDefaults{})
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		link, _ := converter.Convert(entities.PocketLink{URL: "http://x"})
		_, err := uuid.Parse(link.ID)
		require.NoError(t, err)
		assert.False(t, seen[link.ID], "duplicate id %s", link.ID)
		seen[link.ID] = true
	}
}
