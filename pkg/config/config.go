package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// AdminToken protects the /admin/api surface. Callers send it as
	// "Authorization: Bearer <token>". Must be set outside local dev.
	AdminToken string

	// AllowedOrigins is a comma-separated allowlist of origins allowed to call
	// the public quote endpoints from a browser. Example:
	//   https://quotes.baydelivery.ca,http://localhost:5173
	AllowedOrigins []string

	// BackupDir, when set, receives a timestamped local copy of every
	// exported snapshot.
	BackupDir string

	Drive DriveConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DriveConfig holds the optional Google Drive vault settings. The vault is
// configured only when both FolderID and ServiceAccountKeyB64 are present;
// backup/restore degrades to local files otherwise.
type DriveConfig struct {
	// FolderID is the Drive folder acting as the vault root.
	FolderID string

	// ServiceAccountKeyB64 is the base64 of the service account JSON key.
	ServiceAccountKeyB64 string

	// BackupKeep is how many snapshots to retain in the vault (oldest pruned).
	BackupKeep int
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "baydelivery"),
			User:     env("DB_USER", "baydelivery"),
			Password: env("DB_PASSWORD", "baydelivery"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		AdminToken: os.Getenv("ADMIN_API_TOKEN"),
		BackupDir:  os.Getenv("BACKUP_DIR"),
		Drive: DriveConfig{
			FolderID:             os.Getenv("GDRIVE_FOLDER_ID"),
			ServiceAccountKeyB64: os.Getenv("GDRIVE_SA_KEY_B64"),
			BackupKeep:           envInt("GDRIVE_BACKUP_KEEP", 50),
		},

		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	if n <= 0 {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			s := v[start:i]
			start = i + 1
			// trim spaces
			for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
				s = s[1:]
			}
			for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
				s = s[:len(s)-1]
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
