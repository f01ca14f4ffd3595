package importers

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

// isoLayout always carries an explicit UTC offset, which PostgreSQL timestamptz expects.
const isoLayout = "2006-01-02T15:04:05+00:00"

// maxUnixSeconds is 9999-12-31T23:59:59Z, the last instant isoLayout can express.
const maxUnixSeconds = 253402300799

// LinkDefaults are the fixed column values stamped on every imported link.
type LinkDefaults struct {
	UserID string
	List   string
	Status string
	Device string
}

// Converter maps Pocket links to destination rows.
type Converter struct {
	defaults LinkDefaults
	now      func() time.Time
	newID    func() string
}

// NewConverter creates a converter generating UUIDv4 ids and using the wall clock.
func NewConverter(defaults LinkDefaults) *Converter {
	return &Converter{
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Convert builds the destination row for link. The second return value
// reports whether TimeAdded was unusable and the current time was used instead.
func (c *Converter) Convert(link entities.PocketLink) (entities.Link, bool) {
	createdAt, fallback := UnixToISO(link.TimeAdded, c.now())

	out := entities.Link{
		ID:          c.newID(),
		UserID:      c.defaults.UserID,
		RawURL:      link.URL,
		ResolvedURL: nil,
		List:        c.defaults.List,
		Status:      c.defaults.Status,
		DeviceSaved: c.defaults.Device,
		CreatedAt:   createdAt,
	}
	if link.Title != "" {
		title := link.Title
		out.Title = &title
	}

	return out, fallback
}

// UnixToISO renders a Unix seconds string as an ISO-8601 UTC timestamp.
// Anything that is not a plain non-negative integer in range renders now
// instead, and fallback is true. It never fails.
func UnixToISO(ts string, now time.Time) (iso string, fallback bool) {
	if secs, ok := parseUnixSeconds(ts); ok {
		return time.Unix(secs, 0).UTC().Format(isoLayout), false
	}
	return now.UTC().Format(isoLayout), true
}

func parseUnixSeconds(ts string) (int64, bool) {
	if ts == "" {
		return 0, false
	}
	for _, r := range ts {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || secs > maxUnixSeconds {
		return 0, false
	}
	return secs, true
}
