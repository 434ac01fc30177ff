package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/columnar"
	"github.com/abriciof/rfcnpj-parquet/internal/db"
	"github.com/abriciof/rfcnpj-parquet/internal/timeutil"
)

type Config struct {
	// OutputFilesPath receives the downloaded zips.
	OutputFilesPath    string
	ExtractedFilesPath string
	ParquetFilesPath   string

	// remote listing
	ListURLTemplate string
	Lister          string
	StartMonth      string
	ForceMonth      string

	// Offline skips discovery, download and extraction; the pipeline runs on
	// ExtractedFilesPath as is.
	Offline        bool
	EnableDownload bool
	EnableExtract  bool

	// Datasets restricts the run to these types; empty means all.
	Datasets           []string
	ParquetCompression string
	WriteManifest      bool

	// parallelism
	DownloadWorkers int
	ExtractWorkers  int
	FileWorkers     int

	StateDriver string
	StateDSN    string

	LoadPostgres  bool
	CreateIndexes bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPass        string
	DBName        string

	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	PushgatewayURL string
	MetricsJob     string

	// email
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	MailTo             string
	MailNotifyUpToDate bool

	LogLevel  string
	LogFormat string
}

// FromEnv reads the environment without validating, so flags can still be
// applied on top.
func FromEnv() Config {
	return Config{
		OutputFilesPath:    getenv("OUTPUT_FILES_PATH", "/data/output"),
		ExtractedFilesPath: getenv("EXTRACTED_FILES_PATH", "/data/extracted"),
		ParquetFilesPath:   getenv("PARQUET_FILES_PATH", "/data/parquet"),

		ListURLTemplate: getenv("LIST_URL_TEMPLATE", getenv("DAV_LIST_URL_TEMPLATE", "")),
		Lister:          getenv("LISTER", "dav"),
		StartMonth:      getenv("START_MONTH", ""),
		ForceMonth:      getenv("FORCE_MONTH", ""),

		Offline:        getenvBool("OFFLINE", false),
		EnableDownload: getenvBool("ENABLE_DOWNLOAD", true),
		EnableExtract:  getenvBool("ENABLE_EXTRACT", true),

		Datasets:           getenvList("DATASETS"),
		ParquetCompression: getenv("PARQUET_COMPRESSION", "snappy"),
		WriteManifest:      getenvBool("WRITE_MANIFEST", true),

		DownloadWorkers: getenvInt("DOWNLOAD_WORKERS", 4),
		ExtractWorkers:  getenvInt("EXTRACT_WORKERS", 2),
		FileWorkers:     getenvInt("FILE_WORKERS", 2),

		StateDriver: strings.ToLower(getenv("STATE_DRIVER", db.DriverSQLite)),
		StateDSN:    getenv("STATE_DSN", ""),

		LoadPostgres:  getenvBool("LOAD_POSTGRES", false),
		CreateIndexes: getenvBool("CREATE_INDEXES", false),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPass:        getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "rfcnpj"),

		S3Bucket:          getenv("S3_BUCKET", ""),
		S3Prefix:          getenv("S3_PREFIX", "rfcnpj"),
		S3Region:          getenv("S3_REGION", ""),
		S3Endpoint:        getenv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),

		PushgatewayURL: getenv("PUSHGATEWAY_URL", ""),
		MetricsJob:     getenv("METRICS_JOB", "rfcnpj_parquet"),

		SMTPHost:           getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getenvInt("SMTP_PORT", 587),
		SMTPUser:           getenv("SMTP_USER", ""),
		SMTPPass:           getenv("SMTP_PASS", ""),
		MailTo:             getenv("MAIL_TO", ""),
		MailNotifyUpToDate: getenvBool("MAIL_NOTIFY_UPTODATE", false),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}
}

func Load() (Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !c.Offline && strings.TrimSpace(c.ListURLTemplate) == "" {
		errs = append(errs, errors.New("LIST_URL_TEMPLATE não configurada"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Lister)) {
	case "dav", "webdav", "html", "index":
	default:
		errs = append(errs, fmt.Errorf("LISTER inválido: %q", c.Lister))
	}
	if c.StateDriver != db.DriverSQLite && c.StateDriver != db.DriverPgx {
		errs = append(errs, fmt.Errorf("STATE_DRIVER inválido: %q", c.StateDriver))
	}
	if _, err := columnar.ParseCompression(c.ParquetCompression); err != nil {
		errs = append(errs, fmt.Errorf("PARQUET_COMPRESSION: %w", err))
	}
	if _, err := catalog.Default().Subset(c.Datasets); err != nil {
		errs = append(errs, fmt.Errorf("DATASETS: %w", err))
	}
	for name, v := range map[string]string{"START_MONTH": c.StartMonth, "FORCE_MONTH": c.ForceMonth} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := timeutil.ParseYearMonth(v); err != nil {
			errs = append(errs, fmt.Errorf("%s inválido: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// StateStoreDSN is STATE_DSN, or a default per driver: a file under the
// parquet directory for sqlite, the DB_* connection for pgx.
func (c Config) StateStoreDSN() string {
	if strings.TrimSpace(c.StateDSN) != "" {
		return c.StateDSN
	}
	if c.StateDriver == db.DriverPgx {
		return db.PostgresDSN(c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
	}
	return c.ParquetFilesPath + "/rfcnpj_state.db"
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// getenvList splits on commas and drops blanks.
func getenvList(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
