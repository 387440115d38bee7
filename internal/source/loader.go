package source

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/homelabdash/homelabdash/internal/source"

// MetricsRecorder receives the outcome of the load.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// LoaderConfig holds configuration for a Loader.
type LoaderConfig struct {
	Source  Source
	Logger  zerolog.Logger
	Metrics MetricsRecorder
}

// Loader runs a Source exactly once and publishes the resulting LoadState.
// It starts in Loading. The load is not retried and not cancellable.
type Loader struct {
	source  Source
	logger  zerolog.Logger
	metrics MetricsRecorder

	once sync.Once
	done chan struct{}

	mu    sync.RWMutex
	state LoadState
}

// NewLoader creates a Loader in the Loading state.
func NewLoader(cfg LoaderConfig) *Loader {
	return &Loader{
		source:  cfg.Source,
		logger:  cfg.Logger.With().Str("source", cfg.Source.Name()).Logger(),
		metrics: cfg.Metrics,
		done:    make(chan struct{}),
		state:   Loading(),
	}
}

// Start runs the load in the background. Calls after the first are no-ops.
func (l *Loader) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run performs the load synchronously on first call and returns the terminal
// state. Later calls wait for the first to finish and return the same state.
// Cancellation of ctx does not abort the load.
func (l *Loader) Run(ctx context.Context) LoadState {
	l.once.Do(func() {
		l.load(context.WithoutCancel(ctx))
	})
	<-l.done
	return l.State()
}

// State returns the current state.
func (l *Loader) State() LoadState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Done is closed once the state is terminal.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) load(ctx context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "source.Load")
	span.SetAttributes(attribute.String("source.name", l.source.Name()))
	defer span.End()

	l.logger.Debug().Msg("loading services")

	start := time.Now()
	records, err := l.source.Load(ctx)
	duration := time.Since(start)

	if l.metrics != nil {
		l.metrics.RecordRequest(l.source.Name(), "load", duration, err)
	}

	var state LoadState
	if err != nil {
		l.logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("failed to load services")
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		state = Failed(FailureMessage)
	} else {
		l.logger.Info().
			Int("count", len(records)).
			Dur("duration", duration).
			Msg("loaded services")
		span.SetAttributes(attribute.Int("source.records", len(records)))
		state = Loaded(records)
	}

	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	close(l.done)
}
