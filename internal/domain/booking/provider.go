package booking

import "context"

// AvailabilityQuery is shared by the first and second dose searches.
// FirstSlot is only sent for the second dose; it pins the pairing to the
// appointment that was just created.
type AvailabilityQuery struct {
	StartDate        string
	MotiveIDs        string
	AgendaIDs        string
	PracticeID       ID
	Limit            int
	FirstSlot        string
	DestroyTemporary bool
}

// AppointmentRequest is the body of both create calls. SecondSlot is empty
// for the first dose.
type AppointmentRequest struct {
	ProfileID  ID
	MotiveIDs  string
	AgendaIDs  string
	PracticeID ID
	StartDate  string
	SecondSlot string
}

type FinalizeRequest struct {
	CustomFields map[string]string
	Patient      Patient
}

// Provider is the set of calls the booking engine makes against the
// scheduling service. Implementations return internaltypes.ErrTransient
// (wrapped) for timeouts and connection failures.
type Provider interface {
	// SearchCenters returns the search result ids for a normalized city.
	// It returns ErrCityNotFound when the city page does not exist.
	SearchCenters(ctx context.Context, city string, refMotiveIDs []string) ([]ID, error)
	// CenterResult returns nil, nil when the result carries no
	// search_result (non-bookable entity).
	CenterResult(ctx context.Context, id ID, refMotiveIDs []string) (*Center, error)
	OpenCenter(ctx context.Context, centerURL string) error
	BookingPage(ctx context.Context, slug string) (*BookingPage, error)
	Availabilities(ctx context.Context, q AvailabilityQuery) (*Availabilities, error)
	SecondShotAvailabilities(ctx context.Context, q AvailabilityQuery) (*Availabilities, error)
	CreateAppointment(ctx context.Context, req AppointmentRequest) (*AppointmentResult, error)
	// AppointmentEdit fetches the edit view; an empty patientID fetches it
	// anonymously.
	AppointmentEdit(ctx context.Context, id ID, patientID ID) (*AppointmentEdit, error)
	FinalizeAppointment(ctx context.Context, id ID, req FinalizeRequest) (*FinalizeResult, error)
	Appointment(ctx context.Context, id ID) (*AppointmentStatus, error)
}
