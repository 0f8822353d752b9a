// Package importer reconciles a spreadsheet export with the pis table.
//
// Every row is keyed by (numero_pi, cnpj_anunciante), or (numero_pi, nome_anunciante)
// when the tax id is missing. A key already seen in the same run, or already stored,
// is overwritten; anything else is inserted. The whole run is one transaction.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/diewo77/go-pis/internal/models"
	"github.com/diewo77/go-pis/internal/normalize"
	"github.com/diewo77/go-pis/internal/store"
)

// ErrImportFatal marks a failure that aborted the run and rolled it back.
var ErrImportFatal = errors.New("import aborted")

// errDryRun rolls back a dry run after counting.
var errDryRun = errors.New("dry run")

// FatalError carries the sheet line being processed when the run aborted.
type FatalError struct {
	Line int
	Err  error
}

func (e *FatalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %v", ErrImportFatal, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrImportFatal, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func (e *FatalError) Is(target error) bool { return target == ErrImportFatal }

// Options tune a run.
type Options struct {
	// DryRun reconciles everything and then rolls the transaction back.
	DryRun bool
}

// Result summarizes a run.
type Result struct {
	RunID    uuid.UUID
	DryRun   bool
	Rows     int
	Inserted int
	Updated  int
	Skipped  int
	Warnings []normalize.Warning
	Duration time.Duration
}

// Importer upserts PI rows through a store.
type Importer struct {
	store *store.Store
	log   *zap.Logger
}

func New(s *store.Store, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: s, log: log}
}

// key is the business key of a row. byTax tells which of taxID/name is meaningful;
// hasName distinguishes an empty name from a missing one.
type key struct {
	number  string
	byTax   bool
	value   string
	hasName bool
}

func keyOf(pi *models.PI) key {
	if pi.AdvertiserTaxID != nil {
		return key{number: pi.OrderNumber, byTax: true, value: *pi.AdvertiserTaxID}
	}
	if pi.AdvertiserName != nil {
		return key{number: pi.OrderNumber, value: *pi.AdvertiserName, hasName: true}
	}
	return key{number: pi.OrderNumber}
}

// Run imports t. Row-level problems become warnings; anything else aborts the
// run, rolls it back and returns a *FatalError.
func (im *Importer) Run(ctx context.Context, t *normalize.Table, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.New(), DryRun: opts.DryRun, Warnings: []normalize.Warning{}}
	log := im.log.With(zap.String("run_id", res.RunID.String()), zap.Bool("dry_run", opts.DryRun))

	rows := normalize.Project(t)
	res.Rows = len(rows)
	log.Info("import started", zap.Int("rows", len(rows)))

	err := im.store.Transaction(ctx, func(tx *store.Store) error {
		pending := make(map[key]*models.PI, len(rows))
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return &FatalError{Line: row.Line, Err: err}
			}
			if normalize.String(row.Get(normalize.FieldOrderNumber)) == nil {
				res.Skipped++
				res.Warnings = append(res.Warnings, normalize.Warning{
					Line:   row.Line,
					Column: normalize.FieldOrderNumber,
					Value:  row.Get(normalize.FieldOrderNumber),
					Reason: normalize.ReasonMissingOrderNumber,
				})
				continue
			}
			pi, warnings := normalize.Coerce(row)
			res.Warnings = append(res.Warnings, warnings...)

			k := keyOf(pi)
			existing, ok := pending[k]
			if !ok {
				found, err := tx.FindByKey(ctx, pi.OrderNumber, pi.AdvertiserTaxID, pi.AdvertiserName)
				if err != nil {
					return &FatalError{Line: row.Line, Err: pkgerrors.Wrap(err, "lookup")}
				}
				existing = found
			}

			if existing != nil {
				existing.ApplyImport(pi)
				if err := tx.Save(ctx, existing); err != nil {
					return &FatalError{Line: row.Line, Err: pkgerrors.Wrap(err, "update")}
				}
				pending[k] = existing
				res.Updated++
				continue
			}

			if err := tx.Create(ctx, pi); err != nil {
				return &FatalError{Line: row.Line, Err: pkgerrors.Wrap(err, "insert")}
			}
			pending[k] = pi
			res.Inserted++
		}
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	res.Duration = time.Since(start)

	if err != nil && !errors.Is(err, errDryRun) {
		var fatal *FatalError
		if !errors.As(err, &fatal) {
			fatal = &FatalError{Err: pkgerrors.Wrap(err, "transaction")}
		}
		log.Error("import rolled back", zap.Int("line", fatal.Line), zap.Error(fatal.Err))
		return nil, fatal
	}

	log.Info("import finished",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
