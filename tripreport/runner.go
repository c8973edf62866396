package tripreport

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/google/uuid"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tablequery"
	"github.com/jamesrr39/taxitrips-app/taxitripsrenderer"
)

type Options struct {
	InputFilePath string
	TableName     string
	GroupByColumn string
	Limit         int // 0 = no limit
	PreviewRows   int
	// LoadIntoStore loads the input file into the store before querying it.
	// When false, the table must already be in the store.
	LoadIntoStore bool
	IfExists      taxitripsdal.IfExistsMode
	// Verify checks the store's grouped count against the same count run over the input file
	Verify        bool
	ReadBatchSize int64
}

func DefaultOptions() Options {
	return Options{
		InputFilePath: taxitripsdal.DefaultInputFilePath,
		TableName:     taxitripsdal.DefaultTableName,
		GroupByColumn: taxitripsdal.DefaultGroupByColumn,
		Limit:         taxitripsdal.DefaultGroupLimit,
		PreviewRows:   taxitripsdal.DefaultPreviewRows,
		LoadIntoStore: true,
		IfExists:      taxitripsdal.IfExistsModeReplace,
	}
}

// Runner runs the trip report steps. Report output goes to out, progress to the logger.
type Runner struct {
	logger    *logpkg.Logger
	fs        gofs.Fs
	out       io.Writer
	openStore StoreOpener
	tracer    *tracing.Tracer
	options   Options
}

// NewRunner creates a Runner. If tracer is nil, traces are discarded.
func NewRunner(logger *logpkg.Logger, fs gofs.Fs, out io.Writer, openStore StoreOpener, tracer *tracing.Tracer, options Options) *Runner {
	if tracer == nil {
		tracer = tracing.NewTracer(ioutil.Discard)
	}

	return &Runner{
		logger:    logger,
		fs:        fs,
		out:       out,
		openStore: openStore,
		tracer:    tracer,
		options:   options,
	}
}

// Run loads the input file, prints its preview and shape, loads it into the store (if enabled),
// and prints the grouped row count the store gives back.
// If the input file can't be loaded, the store is never opened.
func (r *Runner) Run(ctx context.Context) errorsx.Error {
	return r.withTrace(ctx, "run", func(ctx context.Context) errorsx.Error {
		table, err := r.loadInputFile(ctx)
		if err != nil {
			return err
		}

		err = r.renderSummary(ctx, table)
		if err != nil {
			return err
		}

		return r.withStore(ctx, func(store taxitripsdal.Store) errorsx.Error {
			var err errorsx.Error

			if r.options.LoadIntoStore {
				err = r.loadIntoStore(ctx, store, table)
				if err != nil {
					return err
				}
			}

			groupCounts, err := r.groupCount(ctx, store)
			if err != nil {
				return err
			}

			if r.options.Verify {
				err = r.verify(ctx, table, groupCounts)
				if err != nil {
					return err
				}
			}

			return r.renderGroupCounts(ctx, groupCounts)
		})
	})
}

// Inspect prints the preview and shape of the input file, without touching the store
func (r *Runner) Inspect(ctx context.Context) errorsx.Error {
	return r.withTrace(ctx, "inspect", func(ctx context.Context) errorsx.Error {
		table, err := r.loadInputFile(ctx)
		if err != nil {
			return err
		}

		return r.renderSummary(ctx, table)
	})
}

// Load loads the input file into the store, without querying it
func (r *Runner) Load(ctx context.Context) errorsx.Error {
	return r.withTrace(ctx, "load", func(ctx context.Context) errorsx.Error {
		table, err := r.loadInputFile(ctx)
		if err != nil {
			return err
		}

		return r.withStore(ctx, func(store taxitripsdal.Store) errorsx.Error {
			return r.loadIntoStore(ctx, store, table)
		})
	})
}

// Query prints the grouped row count of a table already in the store
func (r *Runner) Query(ctx context.Context) errorsx.Error {
	return r.withTrace(ctx, "query", func(ctx context.Context) errorsx.Error {
		return r.withStore(ctx, func(store taxitripsdal.Store) errorsx.Error {
			groupCounts, err := r.groupCount(ctx, store)
			if err != nil {
				return err
			}

			return r.renderGroupCounts(ctx, groupCounts)
		})
	})
}

func (r *Runner) withTrace(ctx context.Context, name string, fn func(ctx context.Context) errorsx.Error) errorsx.Error {
	trace := tracing.StartTrace(r.tracer, fmt.Sprintf("%s: %s", name, uuid.New().String()))

	ctx = context.WithValue(ctx, tracing.TraceCtxKey, trace)
	ctx = context.WithValue(ctx, tracing.TracerCtxKey, r.tracer)

	startTime := time.Now()
	err := fn(ctx)

	summary := fmt.Sprintf("%s finished in %s", name, time.Since(startTime))
	if err != nil {
		summary = fmt.Sprintf("%s failed after %s: %s", name, time.Since(startTime), err.Error())
	}

	traceErr := r.tracer.EndTrace(trace, summary)
	if traceErr != nil {
		r.logger.Warn("could not end trace. Error: %q", traceErr)
	}

	return err
}

// withStore opens the store, runs fn and closes the store again, whatever fn returns
func (r *Runner) withStore(ctx context.Context, fn func(store taxitripsdal.Store) errorsx.Error) (err errorsx.Error) {
	span := tracing.StartSpan(ctx, "open store")
	store, err := r.openStore(ctx)
	span.End(ctx)
	if err != nil {
		return errorsx.Wrap(err)
	}

	defer func() {
		closeErr := store.Close()
		if closeErr == nil {
			return
		}

		if err != nil {
			r.logger.Warn("failed to close store %q. Error: %q", store.Name(), closeErr)
			return
		}

		err = errorsx.Wrap(closeErr)
	}()

	return fn(store)
}

func (r *Runner) loadInputFile(ctx context.Context) (*taxitrips.Table, errorsx.Error) {
	span := tracing.StartSpan(ctx, "load input file")
	defer span.End(ctx)

	r.logger.Info("loading %q", r.options.InputFilePath)

	table, err := parquetdb.LoadTable(r.logger, r.fs, r.options.InputFilePath, parquetdb.LoadOptions{
		BatchSize: r.options.ReadBatchSize,
	})
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return table, nil
}

func (r *Runner) renderSummary(ctx context.Context, table *taxitrips.Table) errorsx.Error {
	span := tracing.StartSpan(ctx, "render preview")
	defer span.End(ctx)

	err := taxitripsrenderer.RenderPreview(r.out, table, r.options.PreviewRows)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = taxitripsrenderer.RenderShape(r.out, table)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func (r *Runner) loadIntoStore(ctx context.Context, store taxitripsdal.Store, table *taxitrips.Table) errorsx.Error {
	span := tracing.StartSpan(ctx, "load into store")
	defer span.End(ctx)

	r.logger.Info("loading %d rows into %q (%s)", table.NumRows(), r.options.TableName, store.Name())

	err := store.LoadTable(ctx, r.options.TableName, table, r.options.IfExists)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = taxitripsrenderer.RenderLoadedRowCount(r.out, r.options.TableName, table.NumRows())
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func (r *Runner) groupCountQuery() *taxitripsdal.GroupCountQuery {
	return &taxitripsdal.GroupCountQuery{
		TableName:     r.options.TableName,
		GroupByColumn: r.options.GroupByColumn,
		Limit:         r.options.Limit,
	}
}

func (r *Runner) groupCount(ctx context.Context, store taxitripsdal.Store) ([]*taxitrips.GroupCount, errorsx.Error) {
	span := tracing.StartSpan(ctx, "group count")
	defer span.End(ctx)

	groupCounts, err := store.GroupCount(ctx, r.groupCountQuery())
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return groupCounts, nil
}

func (r *Runner) verify(ctx context.Context, table *taxitrips.Table, groupCounts []*taxitrips.GroupCount) errorsx.Error {
	span := tracing.StartSpan(ctx, "verify group count")
	defer span.End(ctx)

	query := &tablequery.GroupCountQuery{
		GroupByColumn: r.options.GroupByColumn,
		Limit:         r.options.Limit,
	}

	err := query.VerifyGroupCounts(table, groupCounts)
	if err != nil {
		return errorsx.Wrap(err)
	}

	r.logger.Info("verified %d group counts against the input file", len(groupCounts))

	return nil
}

func (r *Runner) renderGroupCounts(ctx context.Context, groupCounts []*taxitrips.GroupCount) errorsx.Error {
	span := tracing.StartSpan(ctx, "render group counts")
	defer span.End(ctx)

	err := taxitripsrenderer.RenderGroupCounts(r.out, groupCounts)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
