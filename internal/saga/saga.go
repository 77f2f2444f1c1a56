// Package saga runs an ordered list of steps and, on failure, undoes the
// completed ones in reverse order. Every intent and outcome is written to a
// journal.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phonestore/internal/model"

	"github.com/rs/zerolog"
)

// Step is one unit of work. Undo may be nil when the step leaves nothing to
// roll back.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Journal records saga progress.
type Journal interface {
	Append(ctx context.Context, entry model.SagaEntry) error
}

// Error is returned by Run when a step fails.
type Error struct {
	SagaID string
	Step   string
	// Compensated is true when every completed step was undone.
	Compensated bool
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("saga %s failed at %s: %v", e.SagaID, e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes sagas.
type Runner struct {
	journal    Journal
	compensate bool
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRunner creates a runner. With compensate false a failed saga halts
// and leaves the completed steps in place.
func NewRunner(journal Journal, compensate bool, logger zerolog.Logger) *Runner {
	if journal == nil {
		journal = NewLogJournal(logger)
	}
	return &Runner{
		journal:    journal,
		compensate: compensate,
		logger:     logger.With().Str("component", "saga").Logger(),
		now:        time.Now,
	}
}

// Compensates reports whether failed sagas are rolled back.
func (r *Runner) Compensates() bool {
	return r.compensate
}

// Run executes steps in order. A cancelled ctx stops the saga at the next
// step boundary. Undo calls run detached from ctx cancellation.
func (r *Runner) Run(ctx context.Context, sagaID string, steps []Step) error {
	log := r.logger.With().Str("saga_id", sagaID).Logger()
	done := make([]Step, 0, len(steps))

	for _, step := range steps {
		err := ctx.Err()
		if err == nil {
			err = r.record(ctx, sagaID, step.Name, model.SagaIntent, "")
		}
		if err == nil {
			err = step.Do(ctx)
		}
		if err != nil {
			r.recordQuietly(ctx, sagaID, step.Name, model.SagaFailed, err.Error())
			log.Error().Err(err).Str("step", step.Name).Msg("saga step failed")

			sErr := &Error{SagaID: sagaID, Step: step.Name, Err: err}
			if r.compensate {
				sErr.Compensated = r.undo(context.WithoutCancel(ctx), sagaID, done)
			}
			return sErr
		}

		r.recordQuietly(ctx, sagaID, step.Name, model.SagaDone, "")
		done = append(done, step)
	}

	log.Debug().Int("steps", len(steps)).Msg("saga completed")
	return nil
}

// undo reverses the completed steps and reports whether all of them were
// undone. It keeps going past a failed undo.
func (r *Runner) undo(ctx context.Context, sagaID string, done []Step) bool {
	ok := true
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			ok = false
			r.recordQuietly(ctx, sagaID, step.Name, model.SagaCompensationFailed, err.Error())
			r.logger.Error().Err(err).Str("saga_id", sagaID).Str("step", step.Name).Msg("compensation failed")
			continue
		}
		r.recordQuietly(ctx, sagaID, step.Name, model.SagaCompensated, "")
	}
	return ok
}

func (r *Runner) record(ctx context.Context, sagaID, step string, phase model.SagaPhase, detail string) error {
	err := r.journal.Append(ctx, model.SagaEntry{
		SagaID:     sagaID,
		Step:       step,
		Phase:      phase,
		Detail:     detail,
		RecordedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to journal %s of %s: %w", phase, step, err)
	}
	return nil
}

func (r *Runner) recordQuietly(ctx context.Context, sagaID, step string, phase model.SagaPhase, detail string) {
	if err := r.record(ctx, sagaID, step, phase, detail); err != nil {
		r.logger.Warn().Err(err).Str("saga_id", sagaID).Msg("journal write failed")
	}
}

// logJournal writes saga entries to the log only.
type logJournal struct {
	logger zerolog.Logger
}

// NewLogJournal returns a Journal that only logs. It backs the remote store,
// which has nowhere durable to keep the journal.
func NewLogJournal(logger zerolog.Logger) Journal {
	return &logJournal{logger: logger.With().Str("component", "saga_journal").Logger()}
}

func (j *logJournal) Append(_ context.Context, entry model.SagaEntry) error {
	ev := j.logger.Info()
	if entry.Phase == model.SagaFailed || entry.Phase == model.SagaCompensationFailed {
		ev = j.logger.Warn()
	}
	ev.Str("saga_id", entry.SagaID).
		Str("step", entry.Step).
		Str("phase", string(entry.Phase)).
		Str("detail", entry.Detail).
		Msg("saga journal")
	return nil
}

// AsError returns the saga error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var sErr *Error
	ok := errors.As(err, &sErr)
	return sErr, ok
}
