package entities

// PocketLink is a single bookmark row taken from a Pocket CSV export.
type PocketLink struct {
	Title      string
	URL        string
	TimeAdded  string // Unix seconds as exported by Pocket, not guaranteed to be numeric
	Tags       string
	Status     string
	SourceFile string // Export file the row came from
}

// Link is a row of the destination "links" table.
type Link struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	RawURL      string  `json:"raw_url"`
	ResolvedURL *string `json:"resolved_url"` // Filled in later by the destination's metadata job
	Title       *string `json:"title"`
	List        string  `json:"list"`
	Status      string  `json:"status"`
	DeviceSaved string  `json:"device_saved"`
	CreatedAt   string  `json:"created_at"`
}
