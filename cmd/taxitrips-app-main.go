package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/humanise"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb"
	"github.com/jamesrr39/taxitrips-app/tripreport"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	DEFAULT_SAMPLE_ROWS = 10 * 1000
	DEFAULT_SAMPLE_SEED = 1
)

var (
	verbose       = kingpin.Flag("verbose", "verbose logging").Short('v').Bool()
	shouldProfile = kingpin.Flag("profile", "write a CPU profile of the command to a temporary directory").Bool()
	traceFilePath = kingpin.Flag("trace-file", "write traces of the command's steps to this file").String()
)

func main() {
	setupRun()
	setupLoad()
	setupQuery()
	setupInspect()
	setupGenerateSample()

	kingpin.Parse()
}

var storeHelp = fmt.Sprintf("store to load into and query. It should be the type (%s, %s or %s), followed by the separator (%s), followed by the path or DSN. For example: %s",
	taxitripsdal.StoreTypeSQLite,
	taxitripsdal.StoreTypeDuckDB,
	taxitripsdal.StoreTypePostgresql,
	taxitripsdal.ConnectionPathSeparator,
	taxitripsdal.DefaultStoreConnString,
)

type reportFlags struct {
	inputFilePath   *string
	storeConnString *string
	tableName       *string
	groupByColumn   *string
	limit           *int
	previewRows     *int
	ifExists        *string
	readBatchSize   *int64
}

func addReportFlags(cmd *kingpin.CmdClause) *reportFlags {
	return &reportFlags{
		inputFilePath:   cmd.Flag("input", "parquet file of taxi trips").Default(taxitripsdal.DefaultInputFilePath).String(),
		storeConnString: cmd.Flag("store", storeHelp).Default(taxitripsdal.DefaultStoreConnString).String(),
		tableName:       cmd.Flag("table", "table in the store").Default(taxitripsdal.DefaultTableName).String(),
		groupByColumn:   cmd.Flag("group-by", "column to count rows by").Default(taxitripsdal.DefaultGroupByColumn).String(),
		limit:           cmd.Flag("limit", "maximum amount of groups to print. 0 = no limit").Default(fmt.Sprintf("%d", taxitripsdal.DefaultGroupLimit)).Int(),
		previewRows:     cmd.Flag("preview-rows", "amount of rows to print in the preview").Default(fmt.Sprintf("%d", taxitripsdal.DefaultPreviewRows)).Int(),
		ifExists:        cmd.Flag("if-exists", "what to do when the table is already in the store: replace, append or fail").Default(string(taxitripsdal.IfExistsModeReplace)).Enum(string(taxitripsdal.IfExistsModeReplace), string(taxitripsdal.IfExistsModeAppend), string(taxitripsdal.IfExistsModeFail)),
		readBatchSize:   cmd.Flag("read-batch-size", "amount of values to read from the parquet file at a time, per column").Default(fmt.Sprintf("%d", parquetdb.DefaultReadBatchSize)).Int64(),
	}
}

func (f *reportFlags) options() (tripreport.Options, *taxitripsdal.PathsConfig, errorsx.Error) {
	pathsConfig, err := taxitripsdal.NewPathsConfig(*f.inputFilePath, *f.storeConnString)
	if err != nil {
		return tripreport.Options{}, nil, errorsx.Wrap(err)
	}

	ifExists, err := taxitripsdal.ParseIfExistsMode(*f.ifExists)
	if err != nil {
		return tripreport.Options{}, nil, errorsx.Wrap(err)
	}

	options := tripreport.DefaultOptions()
	options.InputFilePath = pathsConfig.InputFilePath
	options.TableName = *f.tableName
	options.GroupByColumn = *f.groupByColumn
	options.Limit = *f.limit
	options.PreviewRows = *f.previewRows
	options.IfExists = ifExists
	options.ReadBatchSize = *f.readBatchSize

	return options, pathsConfig, nil
}

// commandEnv is what every command needs, set up from the global flags
type commandEnv struct {
	logger  *logpkg.Logger
	fs      gofs.Fs
	tracer  *tracing.Tracer
	cleanup func()
}

func newCommandEnv() (*commandEnv, errorsx.Error) {
	logLevel := logpkg.LogLevelInfo
	if *verbose {
		logLevel = logpkg.LogLevelDebug
	}
	logger := logpkg.NewLogger(os.Stderr, logLevel)

	var cleanupFuncs []func()
	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	if *shouldProfile {
		profileDir, err := ioutil.TempDir("", "taxitrips-app-profile")
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		p := profile.Start(profile.ProfilePath(profileDir), profile.CPUProfile, profile.Quiet)
		cleanupFuncs = append(cleanupFuncs, func() {
			p.Stop()
			logger.Info("CPU profile written to %q", profileDir)
		})
	}

	var tracer *tracing.Tracer
	if *traceFilePath != "" {
		path, err := userextra.ExpandUser(*traceFilePath)
		if err != nil {
			cleanup()
			return nil, errorsx.Wrap(err, "traceFilePath", *traceFilePath)
		}

		traceFile, err := os.Create(path)
		if err != nil {
			cleanup()
			return nil, errorsx.Wrap(err, "traceFilePath", path)
		}
		cleanupFuncs = append(cleanupFuncs, func() {
			err := traceFile.Close()
			if err != nil {
				logger.Warn("failed to close trace file %q. Error: %q", path, err)
			}
		})

		logger.Info("tracing to %q", path)
		tracer = tracing.NewTracer(traceFile)
	}

	return &commandEnv{
		logger:  logger,
		fs:      gofs.NewOsFs(),
		tracer:  tracer,
		cleanup: cleanup,
	}, nil
}

// runCommand sets up the command environment, runs fn, and turns its error into one with the stack trace
func runCommand(fn func(env *commandEnv) errorsx.Error) error {
	env, err := newCommandEnv()
	if err != nil {
		return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
	}
	defer env.cleanup()

	startTime := time.Now()

	err = fn(env)
	if err != nil {
		return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
	}

	env.logger.Debug("finished in %s", time.Since(startTime))

	return nil
}

func setupRun() {
	cmd := kingpin.Command("run", "load the trips file, print a preview and its shape, load it into the store and print the row count per passenger count").Default()
	flags := addReportFlags(cmd)
	skipStoreLoad := cmd.Flag("skip-store-load", "don't load the trips file into the store; the table must already be there").Bool()
	verify := cmd.Flag("verify", "check the store's counts against the same count over the trips file").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return runCommand(func(env *commandEnv) errorsx.Error {
			options, pathsConfig, err := flags.options()
			if err != nil {
				return errorsx.Wrap(err)
			}
			options.LoadIntoStore = !*skipStoreLoad
			options.Verify = *verify

			runner := tripreport.NewRunner(env.logger, env.fs, os.Stdout, tripreport.NewStoreOpener(env.logger, env.fs, pathsConfig), env.tracer, options)

			return runner.Run(context.Background())
		})
	})
}

func setupLoad() {
	cmd := kingpin.Command("load", "load the trips file into the store")
	flags := addReportFlags(cmd)
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return runCommand(func(env *commandEnv) errorsx.Error {
			options, pathsConfig, err := flags.options()
			if err != nil {
				return errorsx.Wrap(err)
			}

			runner := tripreport.NewRunner(env.logger, env.fs, os.Stdout, tripreport.NewStoreOpener(env.logger, env.fs, pathsConfig), env.tracer, options)

			return runner.Load(context.Background())
		})
	})
}

func setupQuery() {
	cmd := kingpin.Command("query", "print the row count per passenger count of a table already in the store")
	flags := addReportFlags(cmd)
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return runCommand(func(env *commandEnv) errorsx.Error {
			options, pathsConfig, err := flags.options()
			if err != nil {
				return errorsx.Wrap(err)
			}

			runner := tripreport.NewRunner(env.logger, env.fs, os.Stdout, tripreport.NewStoreOpener(env.logger, env.fs, pathsConfig), env.tracer, options)

			return runner.Query(context.Background())
		})
	})
}

func setupInspect() {
	cmd := kingpin.Command("inspect", "print a preview and the shape of the trips file")
	flags := addReportFlags(cmd)
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return runCommand(func(env *commandEnv) errorsx.Error {
			options, pathsConfig, err := flags.options()
			if err != nil {
				return errorsx.Wrap(err)
			}

			runner := tripreport.NewRunner(env.logger, env.fs, os.Stdout, tripreport.NewStoreOpener(env.logger, env.fs, pathsConfig), env.tracer, options)

			return runner.Inspect(context.Background())
		})
	})
}

func setupGenerateSample() {
	cmd := kingpin.Command("generate-sample", "write a parquet file of synthetic taxi trips")
	outputFilePath := cmd.Flag("output", "file to write to").Default(taxitripsdal.DefaultInputFilePath).String()
	rows := cmd.Flag("rows", "amount of trips to generate").Default(fmt.Sprintf("%d", DEFAULT_SAMPLE_ROWS)).Int()
	seed := cmd.Flag("seed", "random seed. The same seed always gives the same trips").Default(fmt.Sprintf("%d", DEFAULT_SAMPLE_SEED)).Int64()
	rowGroupSize := cmd.Flag("parquet-row-group-size", `size in bytes of one parquet "row group"`).Default(fmt.Sprintf("%d", parquetdb.DefaultRowGroupSize)).Int64()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return runCommand(func(env *commandEnv) errorsx.Error {
			var err error

			filePath, err := userextra.ExpandUser(*outputFilePath)
			if err != nil {
				return errorsx.Wrap(err)
			}

			err = env.fs.MkdirAll(filepath.Dir(filePath), 0755)
			if err != nil {
				return errorsx.Wrap(err)
			}

			return generateSampleFile(env.logger, env.fs, filePath, *rows, *seed, *rowGroupSize)
		})
	})
}

func generateSampleFile(logger *logpkg.Logger, fs gofs.Fs, filePath string, rows int, seed, rowGroupSize int64) errorsx.Error {
	var err error

	writer, err := parquetdb.NewTripsWriter(filePath, rowGroupSize)
	if err != nil {
		return errorsx.Wrap(err)
	}

	for _, trip := range parquetdb.GenerateSampleTrips(rows, seed) {
		err = writer.Write(trip)
		if err != nil {
			writer.Close()
			return errorsx.Wrap(err)
		}
	}

	err = writer.Close()
	if err != nil {
		return errorsx.Wrap(err)
	}

	fileInfo, err := fs.Stat(filePath)
	if err != nil {
		return errorsx.Wrap(err)
	}

	logger.Info("wrote %d trips to %q (%s)", writer.RowsWritten(), filePath, humanise.HumaniseBytes(fileInfo.Size()))

	return nil
}
