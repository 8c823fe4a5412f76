package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/doctoshotgun/internal/application/usecases"
	"github.com/example/doctoshotgun/internal/domain/booking"
	"github.com/example/doctoshotgun/internal/internaltypes"
)

type listWalker struct {
	centers []booking.Center
	err     error
	walks   int
}

func (w *listWalker) Walk(_ context.Context, _ string, fn func(booking.Center) (bool, error)) error {
	w.walks++
	if w.err != nil {
		return w.err
	}
	for _, c := range w.centers {
		done, err := fn(c)
		if err != nil || done {
			return err
		}
	}
	return nil
}

type step struct {
	out usecases.Outcome
	err error
}

// scriptedBooker replays steps in order and records the centers it saw.
type scriptedBooker struct {
	steps []step
	seen  []string
}

func (b *scriptedBooker) Execute(_ context.Context, c booking.Center) (usecases.Outcome, error) {
	b.seen = append(b.seen, c.NameWithTitle)
	if len(b.steps) == 0 {
		return usecases.Outcome{State: usecases.StateFailed, Reason: booking.ErrNoAvailability}, nil
	}
	s := b.steps[0]
	b.steps = b.steps[1:]
	return s.out, s.err
}

type lines struct{ got []string }

func (l *lines) Printf(format string, args ...any) { l.got = append(l.got, fmt.Sprintf(format, args...)) }

var (
	tegel     = booking.Center{NameWithTitle: "Tegel"}
	tempelhof = booking.Center{NameWithTitle: "Tempelhof"}

	noSlot    = step{out: usecases.Outcome{State: usecases.StateFailed, Reason: booking.ErrSlotTaken}}
	confirmed = step{out: usecases.Outcome{State: usecases.StateConfirmed}}
	timeout   = step{err: fmt.Errorf("availabilities: %w", internaltypes.ErrTransient)}
)

func TestRun_BooksFirstConfirmingCenter(t *testing.T) {
	w := &listWalker{centers: []booking.Center{tegel, tempelhof}}
	b := &scriptedBooker{steps: []step{noSlot, confirmed}}
	st := &lines{}

	err := Runner{Locator: w, Booker: b, Status: st}.Run(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tegel", "Tempelhof"}, b.seen)
	assert.Equal(t, []string{"\nCenter Tegel:", "\nCenter Tempelhof:"}, st.got)
	assert.Equal(t, 1, w.walks)
}

func TestRun_TransientRestartsWholeSweep(t *testing.T) {
	w := &listWalker{centers: []booking.Center{tegel, tempelhof}}
	b := &scriptedBooker{steps: []step{noSlot, timeout, confirmed}}
	st := &lines{}

	err := Runner{Locator: w, Booker: b, Status: st}.Run(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tegel", "Tempelhof", "Tegel"}, b.seen)
	assert.Equal(t, 2, w.walks)
	assert.Contains(t, st.got, "\nTimeout occurred. Retrying...")
}

func TestRun_CityNotFoundIsFatal(t *testing.T) {
	w := &listWalker{err: fmt.Errorf("atlantis: %w", booking.ErrCityNotFound)}

	err := Runner{Locator: w, Booker: &scriptedBooker{}}.Run(context.Background(), "atlantis")
	assert.ErrorIs(t, err, booking.ErrCityNotFound)
	assert.Equal(t, 1, w.walks)
}

func TestRun_UnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("decode booking page")
	w := &listWalker{centers: []booking.Center{tegel}}
	b := &scriptedBooker{steps: []step{{err: boom}}}

	err := Runner{Locator: w, Booker: b}.Run(context.Background(), "berlin")
	assert.ErrorIs(t, err, boom)
}

func TestRun_SweepsAgainUntilCanceled(t *testing.T) {
	w := &listWalker{centers: []booking.Center{tegel}}
	b := &scriptedBooker{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- Runner{Locator: w, Booker: b, Pause: time.Millisecond}.Run(ctx, "berlin")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestWaitHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Runner{Pause: time.Hour}.wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
