package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// SheetDefaults prefills the print dialog header and layout.
type SheetDefaults struct {
	InstituteName string `yaml:"institute_name"`
	Duration      string `yaml:"duration"`
	DateLayout    string `yaml:"date_layout"` // Go time layout for the default date
	Watermark     string `yaml:"watermark"`
	ImagesPerRow  int    `yaml:"images_per_row"`
	OptionsPerRow int    `yaml:"options_per_row"`
	Columns       int    `yaml:"columns"`
}

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string
	LogMode   string

	DBDriver string
	DBDSN    string

	BlobBasePath string

	ContentAPIURL   string
	ContentTimeout  time.Duration
	CloudinaryCloud string

	TypesetterURL  string
	TypesetTimeout time.Duration

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string

	Sheet SheetDefaults
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000"
	if mode == ModeOnline {
		defOrigins = "https://sheets.mindengage.ai"
	}
	return Config{
		Mode:      mode,
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),
		LogMode:   envOr("LOG_MODE", string(mode)),

		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		ContentAPIURL:   envOr("CONTENT_API_URL", "http://localhost:8000"),
		ContentTimeout:  envMillis("CONTENT_TIMEOUT_MS", 10*time.Second),
		CloudinaryCloud: envOr("CLOUDINARY_CLOUD", "dvh5crcf9"),

		TypesetterURL:  os.Getenv("TYPESETTER_URL"),
		TypesetTimeout: envMillis("TYPESET_TIMEOUT_MS", 8*time.Second),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOrigins: csvOr("CORS_ORIGINS", defOrigins),

		Sheet: SheetDefaults{
			InstituteName: envOr("SHEET_INSTITUTE_NAME", "ABC Institute"),
			Duration:      envOr("SHEET_DURATION", "3 Hours"),
			DateLayout:    "02/01/2006",
			Watermark:     os.Getenv("SHEET_WATERMARK"),
			Columns:       2,
		},
	}
}

// Load reads the environment and, when SHEET_CONFIG_FILE is set, overlays
// the sheet defaults from that YAML file.
func Load() (Config, error) {
	cfg := FromEnv()
	path := os.Getenv("SHEET_CONFIG_FILE")
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read sheet config: %w", err)
	}
	if err := cfg.ApplyYAML(b); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyYAML overlays non-empty fields of a sheet defaults document.
func (c *Config) ApplyYAML(b []byte) error {
	var doc struct {
		Sheet SheetDefaults `yaml:"sheet"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse sheet config: %w", err)
	}
	s := doc.Sheet
	if s.InstituteName != "" {
		c.Sheet.InstituteName = s.InstituteName
	}
	if s.Duration != "" {
		c.Sheet.Duration = s.Duration
	}
	if s.DateLayout != "" {
		c.Sheet.DateLayout = s.DateLayout
	}
	if s.Watermark != "" {
		c.Sheet.Watermark = s.Watermark
	}
	if s.ImagesPerRow > 0 {
		c.Sheet.ImagesPerRow = s.ImagesPerRow
	}
	if s.OptionsPerRow > 0 {
		c.Sheet.OptionsPerRow = s.OptionsPerRow
	}
	if s.Columns > 0 {
		c.Sheet.Columns = s.Columns
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envMillis(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
