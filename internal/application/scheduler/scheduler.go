package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/doctoshotgun/internal/application/usecases"
	"github.com/example/doctoshotgun/internal/domain/booking"
	"github.com/example/doctoshotgun/internal/internaltypes"
)

type CenterWalker interface {
	Walk(ctx context.Context, city string, fn func(booking.Center) (bool, error)) error
}

type CenterBooker interface {
	Execute(ctx context.Context, center booking.Center) (usecases.Outcome, error)
}

type Status interface {
	Printf(format string, args ...any)
}

// Runner sweeps the centers of a city until one of them confirms a booking.
type Runner struct {
	Locator CenterWalker
	Booker  CenterBooker
	Status  Status
	Logger  *zap.Logger
	// Pause is waited between centers and between sweeps.
	Pause time.Duration
}

// Run returns nil once an appointment is confirmed. It returns
// booking.ErrCityNotFound for an unknown city, the context error when
// interrupted and any failure it does not know how to recover from.
//
// A transient network failure anywhere in a sweep restarts the sweep from
// the first center. There is no cursor into the center list.
func (r Runner) Run(ctx context.Context, city string) error {
	log := r.logger().With(zap.String("city", city))
	for sweep := 1; ; sweep++ {
		booked := false
		err := r.Locator.Walk(ctx, city, func(c booking.Center) (bool, error) {
			r.printf("\nCenter %s:", c.NameWithTitle)
			out, err := r.Booker.Execute(ctx, c)
			if err != nil {
				return false, err
			}
			if out.Booked() {
				booked = true
				return true, nil
			}
			log.Debug("center attempt ended",
				zap.String("center", c.NameWithTitle),
				zap.Stringer("state", out.State),
				zap.Stringer("failed_at", out.FailedAt),
				zap.Error(out.Reason),
			)
			return false, r.wait(ctx)
		})

		switch {
		case err == nil && booked:
			log.Info("booked", zap.Int("sweep", sweep))
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, internaltypes.ErrTransient):
			log.Warn("sweep interrupted", zap.Int("sweep", sweep), zap.Error(err))
			r.printf("\nTimeout occurred. Retrying...")
		case err != nil:
			return err
		}

		if err := r.wait(ctx); err != nil {
			return err
		}
	}
}

func (r Runner) wait(ctx context.Context) error {
	if r.Pause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.Pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r Runner) printf(format string, args ...any) {
	if r.Status != nil {
		r.Status.Printf(format, args...)
	}
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
