package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

// State is a step of the booking transaction of one center.
type State int

const (
	StateResolvingMotive State = iota
	StatePollingFirstAvailability
	StateFirstSlotSelected
	StateCreatingFirstAppointment
	StatePollingSecondAvailability
	StateSecondSlotSelected
	StateCreatingSecondAppointment
	StateEditingAppointment
	StateCollectingCustomFields
	StateFinalizing
	StateConfirmed
	StateUnconfirmed
	StateFailed
)

var stateNames = map[State]string{
	StateResolvingMotive:           "resolving_motive",
	StatePollingFirstAvailability:  "polling_first_availability",
	StateFirstSlotSelected:         "first_slot_selected",
	StateCreatingFirstAppointment:  "creating_first_appointment",
	StatePollingSecondAvailability: "polling_second_availability",
	StateSecondSlotSelected:        "second_slot_selected",
	StateCreatingSecondAppointment: "creating_second_appointment",
	StateEditingAppointment:        "editing_appointment",
	StateCollectingCustomFields:    "collecting_custom_fields",
	StateFinalizing:                "finalizing",
	StateConfirmed:                 "confirmed",
	StateUnconfirmed:               "unconfirmed",
	StateFailed:                    "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the result of a booking attempt at one center. State is
// StateConfirmed, StateUnconfirmed or StateFailed; a failed outcome names
// the step it stopped at and the reason.
type Outcome struct {
	State       State
	FailedAt    State
	Reason      error
	Place       string
	Appointment booking.Appointment
}

func (o Outcome) Booked() bool { return o.State == StateConfirmed }

// holdsAppointment reports whether a first dose was reserved and left in
// place by a failed attempt.
func (o Outcome) holdsAppointment() bool { return o.Appointment.StartDate != "" }

// StatusReporter receives the operator status lines of an attempt.
type StatusReporter interface {
	Printf(format string, args ...any)
	Partf(format string, args ...any)
	Fail(msg string)
	OK(msg string)
}

// Notifier signals that a first dose has been reserved.
type Notifier interface {
	Notify()
}

// BookCenter runs the two-dose booking transaction against one center.
//
// Places are tried in order until one ends confirmed or unconfirmed. When
// the second dose cannot be secured the first dose appointment is left in
// place (there is no cancel call) and the next place is tried.
type BookCenter struct {
	Provider      booking.Provider
	Poller        PollAvailability
	Fields        FieldResolver
	Notifier      Notifier
	Status        StatusReporter
	Logger        *zap.Logger
	MotivePattern *regexp.Regexp
	Patient       booking.Patient
	// Limit is the availability page size.
	Limit int
	// BaseURL prefixes the manual-completion link.
	BaseURL string
	Today   func() time.Time
}

func (u BookCenter) Execute(ctx context.Context, center booking.Center) (Outcome, error) {
	if u.Provider == nil {
		return Outcome{}, fmt.Errorf("provider is nil")
	}
	if u.MotivePattern == nil {
		return Outcome{}, fmt.Errorf("motive pattern is nil")
	}
	if u.Poller.Provider == nil {
		u.Poller.Provider = u.Provider
	}
	log := u.logger().With(zap.String("center", center.NameWithTitle))
	status := u.status()

	slug, err := centerSlug(center.URL)
	if err != nil {
		return Outcome{}, err
	}
	if err := u.Provider.OpenCenter(ctx, center.URL); err != nil {
		return Outcome{}, fmt.Errorf("open center %s: %w", center.URL, err)
	}
	page, err := u.Provider.BookingPage(ctx, slug)
	if err != nil {
		return Outcome{}, fmt.Errorf("booking page %s: %w", slug, err)
	}

	motives := page.FindMotive(u.MotivePattern)
	if len(motives) == 0 {
		status.Printf("Unable to find searched motive")
		status.Printf("Motives: %s", strings.Join(page.MotiveNames(), ", "))
		return failed(StateResolvingMotive, booking.ErrNoMotive), nil
	}
	log.Debug("motives resolved", zap.String("motive_ids", booking.JoinIDs(motives)))

	last := failed(StatePollingFirstAvailability, booking.ErrNoAvailability)
	for _, place := range page.Places() {
		status.Partf("– %s...", place.Name)
		practiceID := place.PracticeID()
		appt := booking.Appointment{
			ProfileID:  page.ProfileID(),
			MotiveIDs:  booking.JoinIDs(motives),
			AgendaIDs:  booking.JoinIDs(page.AgendaIDsFor(motives, practiceID)),
			PracticeID: practiceID,
		}
		out, err := u.bookPlace(ctx, log.With(zap.String("place", place.Name)), appt)
		if err != nil {
			return Outcome{}, err
		}
		out.Place = place.Name
		if out.State != StateFailed {
			return out, nil
		}
		if out.holdsAppointment() {
			log.Warn("first dose left without second dose",
				zap.String("place", place.Name),
				zap.String("appointment", out.Appointment.FirstDoseID.String()),
				zap.String("start", out.Appointment.StartDate))
		}
		last = out
	}
	return last, nil
}

func (u BookCenter) bookPlace(ctx context.Context, log *zap.Logger, appt booking.Appointment) (Outcome, error) {
	status := u.status()

	avail, err := u.Poller.Execute(ctx, booking.AvailabilityQuery{
		StartDate:        u.today().Format("2006-01-02"),
		MotiveIDs:        appt.MotiveIDs,
		AgendaIDs:        appt.AgendaIDs,
		PracticeID:       appt.PracticeID,
		Limit:            u.limit(),
		DestroyTemporary: true,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("availabilities: %w", err)
	}
	if len(avail.Availabilities) == 0 {
		status.Fail("no availabilities")
		return failed(StatePollingFirstAvailability, booking.ErrNoAvailability), nil
	}

	slot, err := booking.FindBestSlot(avail.Availabilities)
	if err == nil {
		if _, ok := slot.SecondDoseDate(); !ok {
			err = fmt.Errorf("%w: slot %s has no second dose step", booking.ErrMalformedSlot, slot.StartDate)
		}
	}
	switch {
	case errors.Is(err, booking.ErrNoSlot):
		status.Fail("first slot not found :(")
		return failed(StatePollingFirstAvailability, err), nil
	case err != nil:
		log.Debug("first slot rejected", zap.Error(err))
		status.Fail("error while fetching first slot.")
		return failed(StatePollingFirstAvailability, err), nil
	}
	status.OK("found!")
	status.Printf("  ├╴ Best slot found: %s", displayDate(slot.StartDate))

	req := booking.AppointmentRequest{
		ProfileID:  appt.ProfileID,
		MotiveIDs:  appt.MotiveIDs,
		AgendaIDs:  appt.AgendaIDs,
		PracticeID: appt.PracticeID,
		StartDate:  slot.StartDate,
	}
	res, err := u.Provider.CreateAppointment(ctx, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("create appointment: %w", err)
	}
	if res.IsError() {
		status.Printf("  └╴ Appointment not available anymore :( %s", res.ErrorMessage())
		return failed(StateCreatingFirstAppointment, fmt.Errorf("%w: %s", booking.ErrSlotTaken, res.ErrorMessage())), nil
	}
	appt.StartDate = slot.StartDate
	appt.FirstDoseID = res.ID
	if u.Notifier != nil {
		u.Notifier.Notify()
	}
	log.Info("first dose reserved", zap.String("start", slot.StartDate))

	secondDate, _ := slot.SecondDoseDate()
	secondPage, err := u.Provider.SecondShotAvailabilities(ctx, booking.AvailabilityQuery{
		StartDate:  secondDate,
		MotiveIDs:  appt.MotiveIDs,
		AgendaIDs:  appt.AgendaIDs,
		PracticeID: appt.PracticeID,
		Limit:      u.limit(),
		FirstSlot:  slot.StartDate,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("second shot availabilities: %w", err)
	}
	second, err := booking.FindBestSlot(secondPage.Availabilities)
	if err != nil {
		log.Debug("second slot rejected", zap.Error(err))
		status.Printf("  └╴ No second shot found")
		return holding(failed(StatePollingSecondAvailability, fmt.Errorf("%w: %v", booking.ErrNoSecondShot, err)), appt), nil
	}
	status.Printf("  ├╴ Second shot: %s", displayDate(second.StartDate))

	req.SecondSlot = second.StartDate
	appt.SecondSlot = second.StartDate
	res, err = u.Provider.CreateAppointment(ctx, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("create appointment with second slot: %w", err)
	}
	if res.IsError() {
		status.Printf("  └╴ Appointment not available anymore :( %s", res.ErrorMessage())
		return holding(failed(StateCreatingSecondAppointment, fmt.Errorf("%w: %s", booking.ErrSlotTaken, res.ErrorMessage())), appt), nil
	}
	appt.ID = res.ID

	return u.finalize(ctx, log, appt)
}

func (u BookCenter) finalize(ctx context.Context, log *zap.Logger, appt booking.Appointment) (Outcome, error) {
	status := u.status()

	if _, err := u.Provider.AppointmentEdit(ctx, appt.ID, ""); err != nil {
		return Outcome{}, fmt.Errorf("appointment edit: %w", err)
	}
	status.Printf("  ├╴ Booking for %s %s...", u.Patient.FirstName, u.Patient.LastName)
	edit, err := u.Provider.AppointmentEdit(ctx, appt.ID, u.Patient.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("appointment edit for patient: %w", err)
	}

	fields, err := u.Fields.Resolve(ctx, edit.RequiredFields())
	if err != nil {
		return Outcome{}, err
	}

	fin, err := u.Provider.FinalizeAppointment(ctx, appt.ID, booking.FinalizeRequest{
		CustomFields: fields,
		Patient:      u.Patient,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("finalize appointment: %w", err)
	}
	if fin.Redirection != "" && !strings.Contains(fin.Redirection, "confirmed-appointment") {
		status.Printf("  ├╴ Open %s to complete", u.BaseURL+fin.Redirection)
	}

	st, err := u.Provider.Appointment(ctx, appt.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("appointment status: %w", err)
	}
	status.Printf("  └╴ Booking status: %v", st.Confirmed)
	appt.Confirmed = st.Confirmed
	log.Info("appointment finalized", zap.String("id", appt.ID.String()), zap.Bool("confirmed", st.Confirmed))

	out := Outcome{State: StateUnconfirmed, Appointment: appt}
	if st.Confirmed {
		out.State = StateConfirmed
	}
	return out, nil
}

func failed(at State, reason error) Outcome {
	return Outcome{State: StateFailed, FailedAt: at, Reason: reason}
}

func holding(o Outcome, appt booking.Appointment) Outcome {
	o.Appointment = appt
	return o
}

// centerSlug is the last path segment of a center URL, which names its
// booking page.
func centerSlug(centerURL string) (string, error) {
	u, err := url.Parse(centerURL)
	if err != nil {
		return "", fmt.Errorf("center url %q: %w", centerURL, err)
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "" || slug == "." || slug == "/" {
		return "", fmt.Errorf("center url %q has no path", centerURL)
	}
	return slug, nil
}

// displayDate renders a slot start like "Mon May 17 09:30:00 2021".
func displayDate(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(time.ANSIC)
}

func (u BookCenter) today() time.Time {
	if u.Today != nil {
		return u.Today()
	}
	return time.Now()
}

func (u BookCenter) limit() int {
	if u.Limit > 0 {
		return u.Limit
	}
	return 4
}

func (u BookCenter) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

func (u BookCenter) status() StatusReporter {
	if u.Status == nil {
		return nopStatus{}
	}
	return u.Status
}

type nopStatus struct{}

func (nopStatus) Printf(string, ...any) {}
func (nopStatus) Partf(string, ...any)  {}
func (nopStatus) Fail(string)           {}
func (nopStatus) OK(string)             {}
