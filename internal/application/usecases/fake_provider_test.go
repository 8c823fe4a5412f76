package usecases

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

// fakeProvider is a scripted booking.Provider that records every call.
type fakeProvider struct {
	calls []string

	searchIDs []booking.ID
	searchErr error
	results   map[booking.ID]*booking.Center
	page      *booking.BookingPage

	// availability pages keyed by start date
	first        map[string]*booking.Availabilities
	firstQueries []booking.AvailabilityQuery
	second       *booking.Availabilities
	secondQuery  *booking.AvailabilityQuery

	creates   []booking.AppointmentRequest
	createRes []*booking.AppointmentResult

	edit      *booking.AppointmentEdit
	editCalls []booking.ID
	finalized *booking.FinalizeRequest
	redirect  string
	confirmed bool

	failOn  string
	failErr error
}

func (f *fakeProvider) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return f.failErr
	}
	return nil
}

func (f *fakeProvider) SearchCenters(context.Context, string, []string) ([]booking.ID, error) {
	if err := f.record("search"); err != nil {
		return nil, err
	}
	return f.searchIDs, f.searchErr
}

func (f *fakeProvider) CenterResult(_ context.Context, id booking.ID, _ []string) (*booking.Center, error) {
	if err := f.record("result"); err != nil {
		return nil, err
	}
	return f.results[id], nil
}

func (f *fakeProvider) OpenCenter(context.Context, string) error {
	return f.record("open")
}

func (f *fakeProvider) BookingPage(_ context.Context, slug string) (*booking.BookingPage, error) {
	if err := f.record("booking_page:" + slug); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeProvider) Availabilities(_ context.Context, q booking.AvailabilityQuery) (*booking.Availabilities, error) {
	if err := f.record("availabilities"); err != nil {
		return nil, err
	}
	f.firstQueries = append(f.firstQueries, q)
	if p, ok := f.first[q.StartDate]; ok {
		return p, nil
	}
	return &booking.Availabilities{}, nil
}

func (f *fakeProvider) SecondShotAvailabilities(_ context.Context, q booking.AvailabilityQuery) (*booking.Availabilities, error) {
	if err := f.record("second_shot"); err != nil {
		return nil, err
	}
	f.secondQuery = &q
	if f.second == nil {
		return &booking.Availabilities{}, nil
	}
	return f.second, nil
}

func (f *fakeProvider) CreateAppointment(_ context.Context, req booking.AppointmentRequest) (*booking.AppointmentResult, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.creates = append(f.creates, req)
	i := len(f.creates) - 1
	if i < len(f.createRes) {
		return f.createRes[i], nil
	}
	return &booking.AppointmentResult{ID: "appt-1"}, nil
}

func (f *fakeProvider) AppointmentEdit(_ context.Context, _ booking.ID, patientID booking.ID) (*booking.AppointmentEdit, error) {
	if err := f.record("edit"); err != nil {
		return nil, err
	}
	f.editCalls = append(f.editCalls, patientID)
	if f.edit == nil {
		return &booking.AppointmentEdit{}, nil
	}
	return f.edit, nil
}

func (f *fakeProvider) FinalizeAppointment(_ context.Context, _ booking.ID, req booking.FinalizeRequest) (*booking.FinalizeResult, error) {
	if err := f.record("finalize"); err != nil {
		return nil, err
	}
	f.finalized = &req
	return &booking.FinalizeResult{Redirection: f.redirect}, nil
}

func (f *fakeProvider) Appointment(_ context.Context, id booking.ID) (*booking.AppointmentStatus, error) {
	if err := f.record("status"); err != nil {
		return nil, err
	}
	return &booking.AppointmentStatus{ID: id, Confirmed: f.confirmed}, nil
}

func (f *fakeProvider) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeProvider) index(name string) int {
	for i, c := range f.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func mustPage(raw string) *booking.BookingPage {
	var p booking.BookingPage
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return &p
}

func mustAvail(raw string) *booking.Availabilities {
	var a booking.Availabilities
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		panic(err)
	}
	return &a
}

func slotJSON(start, second string) string {
	return fmt.Sprintf(`{"start_date":%q,"steps":[{"start_date":%q},{"start_date":%q}]}`, start, start, second)
}

type recordingStatus struct{ lines []string }

func (s *recordingStatus) Printf(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}
func (s *recordingStatus) Partf(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}
func (s *recordingStatus) Fail(msg string) { s.lines = append(s.lines, msg) }
func (s *recordingStatus) OK(msg string)   { s.lines = append(s.lines, msg) }

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify() { c.n++ }

type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (p *scriptedPrompter) ReadLine(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", fmt.Errorf("no more answers")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}
