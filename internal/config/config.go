package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Supabase
		Import
		Pocket
		Journal
		Report
		Log
		Stub
	}

	Supabase struct {
		URL     string
		AnonKey string
		Table   string
	}
	Import struct {
		UserID       string
		BatchSize    int
		BatchDelay   time.Duration // Pause after every batch request
		RetryDelay   time.Duration // Pause after every individual fallback request
		HTTPTimeout  time.Duration
		ListName     string
		Status       string // Pocket status selected by extract and import
		TargetStatus string // Status written into every created row
		Device       string
	}
	Pocket struct {
		Dir    string
		Files  []string
		Output string // Normalized unread CSV, produced by extract and read by import
	}
	Journal struct {
		Path string // Empty disables the run journal
	}
	Report struct {
		Dir    string // Empty disables run snapshots
		Format string // "json" or "yaml"
	}
	Log struct {
		Level  string
		Pretty bool
	}
	Stub struct {
		Host string
		Port int
	}
)

// flagKeys maps command line flags onto configuration keys. A flag only
// overrides the environment when it is present in the parsed flag set.
var flagKeys = map[string]string{
	"supabase-url":  "supabase_url",
	"api-key":       "supabase_anon_key",
	"table":         "supabase_table",
	"user-id":       "import_user_id",
	"batch-size":    "import_batch_size",
	"batch-delay":   "import_batch_delay",
	"retry-delay":   "import_retry_delay",
	"http-timeout":  "import_http_timeout",
	"status":        "import_status",
	"target-status": "import_target_status",
	"dir":           "pocket_dir",
	"files":         "pocket_files",
	"file":          "unread_output",
	"output":        "unread_output",
	"journal":       "journal_path",
	"report-dir":    "report_dir",
	"report-format": "report_format",
	"log-level":     "log_level",
	"log-pretty":    "log_pretty",
	"host":          "stub_host",
	"port":          "stub_port",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_anon_key", "")
	v.SetDefault("supabase_table", DefaultTable)

	v.SetDefault("import_user_id", "")
	v.SetDefault("import_batch_size", DefaultBatchSize)
	v.SetDefault("import_batch_delay", DefaultBatchDelay)
	v.SetDefault("import_retry_delay", DefaultRetryDelay)
	v.SetDefault("import_http_timeout", DefaultHTTPTimeout)
	v.SetDefault("import_list_name", DefaultListName)
	v.SetDefault("import_status", DefaultStatus)
	v.SetDefault("import_target_status", DefaultTargetStatus)
	v.SetDefault("import_device", DefaultDevice)

	v.SetDefault("pocket_dir", DefaultPocketDir)
	v.SetDefault("pocket_files", DefaultPocketFiles)
	v.SetDefault("unread_output", DefaultUnreadOutput)

	v.SetDefault("journal_path", DefaultJournalPath)
	v.SetDefault("report_dir", "")
	v.SetDefault("report_format", "json")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)

	v.SetDefault("stub_host", DefaultStubHost)
	v.SetDefault("stub_port", DefaultStubPort)
}

// Load reads the configuration from environment variables, letting any
// explicitly set flag in fs take precedence. A nil fs reads the environment only.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if fs != nil {
		var bindErr error
		fs.Visit(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || bindErr != nil {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	cfg := &Config{
		Supabase: Supabase{
			URL:     strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			AnonKey: v.GetString("SUPABASE_ANON_KEY"),
			Table:   v.GetString("SUPABASE_TABLE"),
		},
		Import: Import{
			UserID:       v.GetString("IMPORT_USER_ID"),
			BatchSize:    v.GetInt("IMPORT_BATCH_SIZE"),
			BatchDelay:   v.GetDuration("IMPORT_BATCH_DELAY"),
			RetryDelay:   v.GetDuration("IMPORT_RETRY_DELAY"),
			HTTPTimeout:  v.GetDuration("IMPORT_HTTP_TIMEOUT"),
			ListName:     v.GetString("IMPORT_LIST_NAME"),
			Status:       v.GetString("IMPORT_STATUS"),
			TargetStatus: v.GetString("IMPORT_TARGET_STATUS"),
			Device:       v.GetString("IMPORT_DEVICE"),
		},
		Pocket: Pocket{
			Dir:    v.GetString("POCKET_DIR"),
			Files:  splitList(v.GetString("POCKET_FILES")),
			Output: v.GetString("UNREAD_OUTPUT"),
		},
		Journal: Journal{
			Path: v.GetString("JOURNAL_PATH"),
		},
		Report: Report{
			Dir:    v.GetString("REPORT_DIR"),
			Format: strings.ToLower(v.GetString("REPORT_FORMAT")),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		Stub: Stub{
			Host: v.GetString("STUB_HOST"),
			Port: v.GetInt("STUB_PORT"),
		},
	}

	if cfg.Import.BatchSize <= 0 {
		cfg.Import.BatchSize = DefaultBatchSize
	}

	return cfg, nil
}

// Validate checks the settings needed to talk to the destination store.
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is not set")
	}
	if c.Supabase.AnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is not set")
	}
	if c.Import.UserID == "" {
		return fmt.Errorf("IMPORT_USER_ID is not set")
	}
	switch c.Report.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported REPORT_FORMAT %q (want json or yaml)", c.Report.Format)
	}
	return nil
}

// PocketPaths returns the export files joined with the Pocket directory.
// Absolute entries are kept as is.
func (c *Config) PocketPaths() []string {
	paths := make([]string, 0, len(c.Pocket.Files))
	for _, f := range c.Pocket.Files {
		if filepath.IsAbs(f) || c.Pocket.Dir == "" {
			paths = append(paths, f)
			continue
		}
		paths = append(paths, filepath.Join(c.Pocket.Dir, f))
	}
	return paths
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
