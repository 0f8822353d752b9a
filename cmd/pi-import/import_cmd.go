package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/go-pis/i18n"
	"github.com/diewo77/go-pis/internal/config"
	"github.com/diewo77/go-pis/internal/db"
	"github.com/diewo77/go-pis/internal/importer"
	"github.com/diewo77/go-pis/internal/logger"
	"github.com/diewo77/go-pis/internal/normalize"
	"github.com/diewo77/go-pis/internal/sheet"
	"github.com/diewo77/go-pis/internal/store"
)

const defaultWarningsFile = "import_warnings.csv"

type importOptions struct {
	file     string
	sheet    string
	warnings string
	dryRun   bool
	lang     string
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lang := opts.lang
	if lang == "" {
		lang = langFromEnv()
	}
	lang = i18n.Normalize(lang)

	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.App.Dev)
	if err != nil {
		return withCode(exitUsage, err)
	}
	defer func() { _ = log.Sync() }()

	table, err := sheet.Open(opts.file, opts.sheet)
	if err != nil {
		return withCode(exitInput, fmt.Errorf("read %s: %w", opts.file, err))
	}

	dbConn, err := db.Connect(cfg.Database, log)
	if err != nil {
		return withCode(exitDB, err)
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(dbConn, cfg, log); err != nil {
		return withCode(exitDB, err)
	}

	im := importer.New(store.New(dbConn, cfg.Query.MaxLimit), log)
	res, err := im.Run(ctx, table, importer.Options{DryRun: opts.dryRun})
	if err != nil {
		if errors.Is(err, importer.ErrImportFatal) {
			return withCode(exitImportRun, err)
		}
		return withCode(exitDB, err)
	}

	fmt.Fprintf(out, i18n.T(lang, "import_summary")+"\n",
		res.Rows, res.Inserted, res.Updated, res.Skipped, len(res.Warnings))
	if res.DryRun {
		fmt.Fprintln(out, i18n.T(lang, "import_dry_run"))
	}

	if len(res.Warnings) == 0 {
		fmt.Fprintln(out, i18n.T(lang, "import_no_warnings"))
		return nil
	}
	path := opts.warnings
	if path == "" {
		path = filepath.Join(filepath.Dir(opts.file), defaultWarningsFile)
	}
	if err := writeWarnings(path, res.Warnings, lang); err != nil {
		return withCode(exitInput, fmt.Errorf("write warnings: %w", err))
	}
	fmt.Fprintf(out, i18n.T(lang, "import_warnings_written")+"\n", path)
	log.Info("warnings exported", zap.String("path", path), zap.Int("count", len(res.Warnings)))
	return nil
}

// writeWarnings writes linha,coluna,valor,motivo with a UTF-8 BOM so Excel opens it correctly.
func writeWarnings(path string, warnings []normalize.Warning, lang string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeWarnings(f, warnings, lang); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeWarnings(w io.Writer, warnings []normalize.Warning, lang string) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"linha", "coluna", "valor", "motivo"}); err != nil {
		return err
	}
	for _, wn := range warnings {
		rec := []string{strconv.Itoa(wn.Line), wn.Column, wn.Value, i18n.T(lang, wn.Reason)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// langFromEnv reads a POSIX locale such as pt_BR.UTF-8.
func langFromEnv() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(k); v != "" && v != "C" && v != "POSIX" {
			v, _, _ = strings.Cut(v, ".")
			return strings.ReplaceAll(v, "_", "-")
		}
	}
	return i18n.Default
}
