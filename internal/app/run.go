package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/columnar"
	"github.com/abriciof/rfcnpj-parquet/internal/config"
	"github.com/abriciof/rfcnpj-parquet/internal/dataset"
	"github.com/abriciof/rfcnpj-parquet/internal/db"
	"github.com/abriciof/rfcnpj-parquet/internal/downloader"
	"github.com/abriciof/rfcnpj-parquet/internal/email"
	"github.com/abriciof/rfcnpj-parquet/internal/extract"
	"github.com/abriciof/rfcnpj-parquet/internal/metrics"
	"github.com/abriciof/rfcnpj-parquet/internal/pipeline"
	"github.com/abriciof/rfcnpj-parquet/internal/publish"
	"github.com/abriciof/rfcnpj-parquet/internal/remote"
	"github.com/abriciof/rfcnpj-parquet/internal/scan"
	"github.com/abriciof/rfcnpj-parquet/internal/state"
	"github.com/abriciof/rfcnpj-parquet/internal/timeutil"
)

type report struct {
	Month      timeutil.YearMonth
	MonthURL   string
	Offline    bool
	UpToDate   bool
	StartedAt  time.Time
	FinishedAt time.Time
	Downloaded int
	Extracted  int
	ParquetDir string
	Outcomes   *pipeline.Outcomes
	Errors     []string
}

// label names the run in state rows and e-mail subjects.
func (r report) label() string {
	if r.Month.IsZero() {
		return "offline"
	}
	return r.Month.String()
}

// Run executes one full cycle. Only setup failures are returned; per-dataset
// failures end up in the report and the state store.
func Run(ctx context.Context, cfg config.Config) error {
	_, err := execute(ctx, cfg)
	return err
}

func execute(ctx context.Context, cfg config.Config) (report, error) {
	rep := report{StartedAt: time.Now(), Offline: cfg.Offline}
	slog.Info("pipeline started",
		"offline", cfg.Offline,
		"start_month", cfg.StartMonth,
		"force_month", cfg.ForceMonth,
		"datasets", strings.Join(cfg.Datasets, ","),
		"enable_download", cfg.EnableDownload,
		"enable_extract", cfg.EnableExtract,
		"load_postgres", cfg.LoadPostgres,
		"output_path", cfg.OutputFilesPath,
		"extracted_path", cfg.ExtractedFilesPath,
		"parquet_path", cfg.ParquetFilesPath,
	)

	cat, err := catalog.Default().Subset(cfg.Datasets)
	if err != nil {
		return rep, err
	}
	codec, err := columnar.ParseCompression(cfg.ParquetCompression)
	if err != nil {
		return rep, err
	}
	for _, dir := range []string{cfg.OutputFilesPath, cfg.ExtractedFilesPath, cfg.ParquetFilesPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return rep, err
		}
	}

	stateDB, err := db.Open(ctx, cfg.StateDriver, cfg.StateStoreDSN())
	if err != nil {
		return rep, fmt.Errorf("open state store: %w", err)
	}
	defer stateDB.Close()
	meta := state.NewMetaStore(stateDB, cfg.StateDriver)
	if err := meta.Ensure(ctx); err != nil {
		return rep, err
	}

	extractedDir := cfg.ExtractedFilesPath
	rep.ParquetDir = cfg.ParquetFilesPath

	if !cfg.Offline {
		lister, err := remote.New(cfg.Lister)
		if err != nil {
			return rep, err
		}
		month, items, err := resolveTargetMonth(ctx, cfg, meta, lister)
		if err != nil {
			return rep, err
		}
		rep.Month = month
		rep.MonthURL = remote.ListURL(cfg.ListURLTemplate, month.String())

		if len(items) == 0 {
			rep.UpToDate = true
			msg := fmt.Sprintf("✅ Já atualizado. Próximo mês (%s) ainda não disponível.", month.HumanPTBR())
			slog.Info("up-to-date", "month", month.String(), "message", msg)
			if cfg.MailNotifyUpToDate {
				notify(cfg, "RFCNPJ Parquet - Atualizado ("+month.String()+")", msg)
			}
			return rep, nil
		}
		slog.Info("remote files listed", "month", month.String(), "count", len(items))

		wanted := downloader.FilterWanted(items, cat)
		slog.Info("filtered wanted zip files", "count", len(wanted))

		down := downloader.NewDownloader(filepath.Join(cfg.OutputFilesPath, month.String()), cfg.DownloadWorkers, cfg.EnableDownload)
		zipPaths, err := down.DownloadAll(ctx, wanted)
		if err != nil {
			return rep, err
		}
		rep.Downloaded = len(zipPaths)

		extractedDir = filepath.Join(cfg.ExtractedFilesPath, month.String())
		ext := extract.NewExtractor(cfg.ExtractWorkers, cfg.EnableExtract)
		if err := ext.ExtractAll(ctx, zipPaths, extractedDir); err != nil {
			return rep, err
		}
		if cfg.EnableExtract {
			rep.Extracted = len(zipPaths)
		}
		rep.ParquetDir = filepath.Join(cfg.ParquetFilesPath, month.String())
	}

	if fb, err := scan.ScanExtracted(cat, extractedDir); err != nil {
		slog.Warn("scan failed", "dir", extractedDir, "error", err)
	} else {
		attrs := []any{"dir", extractedDir}
		for _, t := range cat.Types() {
			attrs = append(attrs, string(t)+"_files", len(fb[t]))
		}
		slog.Info("scan stage finished", attrs...)
	}

	rec, err := metrics.NewPrometheus(cfg.MetricsJob, cfg.PushgatewayURL)
	if err != nil {
		return rep, err
	}

	driver := pipeline.NewDriver(cat, dataset.NewAssembler(cat, cfg.FileWorkers), columnar.WithCompression(codec))
	driver.Metrics = rec
	driver.Manifest = cfg.WriteManifest

	pubs, closePubs, err := buildPublishers(ctx, cfg, rep.label())
	if err != nil {
		return rep, err
	}
	defer closePubs()
	driver.Publishers = pubs

	rep.Outcomes = driver.Run(ctx, extractedDir, rep.ParquetDir)
	rep.FinishedAt = time.Now()

	if err := meta.RecordRun(ctx, runRecords(rep.label(), rep.Outcomes)); err != nil {
		slog.Error("cannot record run", "error", err)
		rep.Errors = append(rep.Errors, "state: "+err.Error())
	}
	if !cfg.Offline {
		markLoaded(ctx, meta, &rep)
	}

	if err := rec.Flush(ctx); err != nil {
		slog.Warn("metrics push failed", "error", err)
		rep.Errors = append(rep.Errors, "metrics: "+err.Error())
	}

	notify(cfg, fmt.Sprintf("RFCNPJ Parquet finalizado - %s", rep.label()), formatReport(rep))

	slog.Info("pipeline finished",
		"month", rep.label(),
		"written", rep.Outcomes.Count(pipeline.StatusWritten),
		"empty", rep.Outcomes.Count(pipeline.StatusEmpty),
		"errors", rep.Outcomes.Count(pipeline.StatusError),
		"rows", rep.Outcomes.TotalRows(),
		"duration", time.Since(rep.StartedAt).String(),
	)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	return rep, nil
}

// markLoaded advances loaded_month when no dataset type errored. Store
// failures go to the report.
func markLoaded(ctx context.Context, meta *state.MetaStore, rep *report) {
	if failed := rep.Outcomes.Count(pipeline.StatusError); failed > 0 {
		slog.Warn("month not marked as loaded", "month", rep.Month.String(), "failed_datasets", failed)
		return
	}
	for _, kv := range [][2]string{
		{state.KeyLoadedMonth, rep.Month.String()},
		{state.KeyLoadedURL, rep.MonthURL},
	} {
		if err := meta.Set(ctx, kv[0], kv[1]); err != nil {
			slog.Error("cannot persist loaded month", "key", kv[0], "month", rep.Month.String(), "error", err)
			rep.Errors = append(rep.Errors, "state: "+err.Error())
			return
		}
	}
}

func resolveTargetMonth(ctx context.Context, cfg config.Config, meta *state.MetaStore, lister remote.Lister) (timeutil.YearMonth, []remote.Item, error) {
	if strings.TrimSpace(cfg.ForceMonth) != "" {
		ym, err := timeutil.ParseYearMonth(cfg.ForceMonth)
		if err != nil {
			return timeutil.YearMonth{}, nil, fmt.Errorf("FORCE_MONTH inválido: %w", err)
		}
		items, err := lister.ListZips(ctx, remote.ListURL(cfg.ListURLTemplate, ym.String()))
		if err != nil {
			return ym, nil, fmt.Errorf("FORCE_MONTH não disponível: %w", err)
		}
		return ym, items, nil
	}

	lastStr, ok, err := meta.Get(ctx, state.KeyLoadedMonth)
	if err != nil {
		return timeutil.YearMonth{}, nil, err
	}

	var target timeutil.YearMonth
	if ok {
		last, err := timeutil.ParseYearMonth(lastStr)
		if err != nil {
			return timeutil.YearMonth{}, nil, fmt.Errorf("loaded_month inválido no estado: %w", err)
		}
		target = last.Next()
	} else {
		if strings.TrimSpace(cfg.StartMonth) == "" {
			return timeutil.YearMonth{}, nil, errors.New("primeira execução: START_MONTH é obrigatório (não existe loaded_month no estado)")
		}
		first, err := timeutil.ParseYearMonth(cfg.StartMonth)
		if err != nil {
			return timeutil.YearMonth{}, nil, fmt.Errorf("START_MONTH inválido: %w", err)
		}
		target = first
	}

	if target.After(timeutil.Of(time.Now())) {
		return target, nil, nil
	}
	items, err := lister.ListZips(ctx, remote.ListURL(cfg.ListURLTemplate, target.String()))
	if err != nil {
		// month not published yet
		slog.Debug("listing failed, treating as not published", "month", target.String(), "error", err)
		return target, nil, nil
	}
	return target, items, nil
}

func buildPublishers(ctx context.Context, cfg config.Config, label string) ([]pipeline.Publisher, func(), error) {
	var pubs []pipeline.Publisher
	var pg *sql.DB
	closeAll := func() {
		if pg != nil {
			pg.Close()
		}
	}

	if cfg.LoadPostgres {
		conn, err := db.OpenSQL(ctx, cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
		if err != nil {
			return nil, closeAll, fmt.Errorf("open postgres: %w", err)
		}
		pg = conn
		slog.Info("database connected", "host", cfg.DBHost, "port", cfg.DBPort, "db_name", cfg.DBName)
		pubs = append(pubs, publish.NewPostgres(conn, cfg.CreateIndexes))
	}

	if strings.TrimSpace(cfg.S3Bucket) != "" {
		client, err := publish.NewS3Client(ctx, publish.S3Options{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		pubs = append(pubs, publish.NewS3(client, cfg.S3Bucket, strings.Trim(cfg.S3Prefix, "/")+"/"+label))
	}
	return pubs, closeAll, nil
}

func runRecords(label string, oc *pipeline.Outcomes) []state.RunRecord {
	out := make([]state.RunRecord, 0, len(oc.Order))
	for _, o := range oc.List() {
		out = append(out, state.RunRecord{
			Month:   label,
			Dataset: string(o.Type),
			Status:  string(o.Status),
			Rows:    o.Rows,
			Path:    o.Path,
			Error:   o.Message(),
		})
	}
	return out
}

func notify(cfg config.Config, subject, body string) {
	sc := email.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass, To: cfg.MailTo}
	if !email.Enabled(sc) {
		return
	}
	if err := email.Send(sc, subject, body); err != nil {
		slog.Warn("e-mail not sent", "error", err)
	}
}
