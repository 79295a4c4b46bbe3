package gridfilter

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/translate"
)

// Config contains configuration for an Engine.
type Config struct {
	// Registry resolves a translator per filter type.
	// OPTIONAL: Uses translate.DefaultRegistry() if nil. MUST NOT be empty.
	Registry *translate.Registry

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: If nil, a text logger on stderr is created at LogLevel.
	Logger *slog.Logger

	// LogLevel sets the logging level of the created logger.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level
}

// Standard errors returned by gridfilter package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid engine config")

	// ErrAlreadyBuilt is returned when a builder is used after Build.
	ErrAlreadyBuilt = errors.New("already built")
)
