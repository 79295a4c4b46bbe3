package gridfilter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/internal/recovery"
	"github.com/hugr-lab/gridfilter/query"
	"github.com/hugr-lab/gridfilter/source"
	"github.com/hugr-lab/gridfilter/translate"
)

// Engine applies grid state to tables.
// An Engine is safe for concurrent use.
type Engine struct {
	exec   *query.Executor
	logger *slog.Logger
}

// New creates an engine from config.
//
// Example:
//
//	engine, err := gridfilter.New(gridfilter.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page, err := engine.Query(ctx, table, state)
func New(config Config) (*Engine, error) {
	if config.Registry == nil {
		config.Registry = translate.DefaultRegistry()
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if config.Allocator == nil {
		config.Allocator = memory.DefaultAllocator
	}
	if config.Logger == nil {
		level := slog.LevelInfo
		if config.LogLevel != nil {
			level = *config.LogLevel
		}
		config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}

	e := &Engine{
		exec: query.NewExecutor(config.Registry,
			query.WithAllocator(config.Allocator),
			query.WithLogger(config.Logger),
		),
		logger: config.Logger,
	}
	config.Logger.Debug("Grid engine created", "filter_types", config.Registry.Types())
	return e, nil
}

func validateConfig(config Config) error {
	if config.Registry.Len() == 0 {
		return fmt.Errorf("registry has no translators")
	}
	return nil
}

// Executor returns the query executor used by the engine.
func (e *Engine) Executor() *query.Executor {
	return e.exec
}

// Apply returns the filtered, sorted and windowed rows of tbl.
// Caller MUST release the reader.
func (e *Engine) Apply(ctx context.Context, tbl source.Table, st *grid.State) (array.RecordReader, error) {
	return e.exec.Apply(ctx, tbl, st)
}

// TotalCount returns the number of rows of tbl passing the filters of st,
// ignoring the window.
func (e *Engine) TotalCount(ctx context.Context, tbl source.Table, st *grid.State) (int64, error) {
	return e.exec.TotalCount(ctx, tbl, st)
}

// Query returns one page of tbl together with its total count.
// Caller MUST release the page.
func (e *Engine) Query(ctx context.Context, tbl source.Table, st *grid.State) (*query.Page, error) {
	return e.exec.Query(ctx, tbl, st)
}

// PageFunc receives the result of a re-query. It owns the page and MUST
// release it. page is nil when err is set.
type PageFunc func(page *query.Page, err error)

// Watch queries tbl once immediately and again after every change of st,
// passing each result to fn. Changes raised while a query runs are
// coalesced into one follow-up query over the latest state. Watching ends
// when ctx is cancelled or stop is called; stop waits for a running fn
// to return and must not be called from fn.
func (e *Engine) Watch(ctx context.Context, tbl source.Table, st *grid.State, fn PageFunc) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	changed := make(chan struct{}, 1)
	changed <- struct{}{}

	unsubscribe := st.Subscribe(func(grid.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
			page, err := e.exec.Query(ctx, tbl, st)
			if err != nil && ctx.Err() != nil {
				return
			}
			if err != nil {
				e.logger.Warn("Grid re-query failed", "table", tableName(tbl), "error", err)
			}
			recovery.Recover(e.logger, "grid watch callback", func() { fn(page, err) })
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}

func tableName(tbl source.Table) string {
	if tbl == nil {
		return ""
	}
	return tbl.Name()
}
