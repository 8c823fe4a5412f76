package booking

import (
	"regexp"

	"github.com/goccy/go-json"
)

// BookingPage is the booking data of one center (/booking/{slug}.json).
type BookingPage struct {
	Data struct {
		Profile struct {
			ID ID `json:"id"`
		} `json:"profile"`
		VisitMotives []Motive `json:"visit_motives"`
		Places       []Place  `json:"places"`
		Agendas      []Agenda `json:"agendas"`
	} `json:"data"`
}

func (p *BookingPage) ProfileID() ID { return p.Data.Profile.ID }

// FindMotive returns the ids of motives whose name matches re.
func (p *BookingPage) FindMotive(re *regexp.Regexp) []ID {
	var ids []ID
	for _, m := range p.Data.VisitMotives {
		if re.MatchString(m.Name) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func (p *BookingPage) MotiveNames() []string {
	names := make([]string, 0, len(p.Data.VisitMotives))
	for _, m := range p.Data.VisitMotives {
		names = append(names, m.Name)
	}
	return names
}

func (p *BookingPage) Places() []Place { return p.Data.Places }

// AgendaIDs returns the bookable agendas serving any of motiveIDs. An empty
// practiceID disables the practice filter.
func (p *BookingPage) AgendaIDs(motiveIDs []ID, practiceID ID) []ID {
	var ids []ID
	for _, a := range p.Data.Agendas {
		if a.BookingDisabled {
			continue
		}
		if practiceID != "" && a.PracticeID != practiceID {
			continue
		}
		for _, m := range motiveIDs {
			if containsID(a.VisitMotiveIDs, m) {
				ids = append(ids, a.ID)
				break
			}
		}
	}
	return ids
}

// AgendaIDsFor scopes the lookup to practiceID first and falls back to all
// practices when that yields nothing; practice metadata is often too strict.
func (p *BookingPage) AgendaIDsFor(motiveIDs []ID, practiceID ID) []ID {
	if ids := p.AgendaIDs(motiveIDs, practiceID); len(ids) > 0 {
		return ids
	}
	return p.AgendaIDs(motiveIDs, "")
}

func containsID(ids []ID, id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Day is one entry of an availabilities response. Slots are kept raw so a
// non-object entry can be told apart from a real slot.
type Day struct {
	Date  string            `json:"date"`
	Slots []json.RawMessage `json:"slots"`
}

// Availabilities is the response of /availabilities.json and
// /second_shot_availabilities.json.
type Availabilities struct {
	Availabilities []Day   `json:"availabilities"`
	NextSlot       *string `json:"next_slot,omitempty"`
	Total          int     `json:"total"`
}

// Next reports the date the service suggests to query next.
func (a *Availabilities) Next() (string, bool) {
	if a.NextSlot == nil || *a.NextSlot == "" {
		return "", false
	}
	return *a.NextSlot, true
}

// AppointmentResult is the response of a create/update on /appointments.json.
type AppointmentResult struct {
	ID    ID      `json:"id"`
	Error *string `json:"error,omitempty"`
}

func (r *AppointmentResult) IsError() bool { return r.Error != nil }

func (r *AppointmentResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

type CustomField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// AppointmentEdit is the response of /appointments/{id}/edit.json.
type AppointmentEdit struct {
	Appointment struct {
		CustomFields []CustomField `json:"custom_fields"`
	} `json:"appointment"`
}

func (e *AppointmentEdit) RequiredFields() []CustomField {
	var out []CustomField
	for _, f := range e.Appointment.CustomFields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// FinalizeResult is the response of the PUT on /appointments/{id}.json.
type FinalizeResult struct {
	Redirection string `json:"redirection"`
}

type AppointmentStatus struct {
	ID        ID   `json:"id"`
	Confirmed bool `json:"confirmed"`
}
