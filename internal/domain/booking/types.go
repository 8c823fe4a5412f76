package booking

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ID is an identifier issued by the booking service. The service is not
// consistent about sending ids as numbers or strings, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if !json.Valid(b) {
		return fmt.Errorf("booking: invalid id %q", b)
	}
	*id = ID(b)
	return nil
}

func (id ID) String() string { return string(id) }

// JoinIDs renders ids the way the service expects them in query strings
// and appointment bodies ("12-34-56").
func JoinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, "-")
}

type Center struct {
	ID            ID     `json:"id"`
	NameWithTitle string `json:"name_with_title"`
	URL           string `json:"url"`
}

type Motive struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Agenda is usable only when BookingDisabled is false.
type Agenda struct {
	ID              ID   `json:"id"`
	VisitMotiveIDs  []ID `json:"visit_motive_ids"`
	PracticeID      ID   `json:"practice_id"`
	BookingDisabled bool `json:"booking_disabled"`
}

type Place struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	PracticeIDs []ID   `json:"practice_ids"`
}

// PracticeID is the first practice of the place, or "" when it has none.
func (p Place) PracticeID() ID {
	if len(p.PracticeIDs) == 0 {
		return ""
	}
	return p.PracticeIDs[0]
}

type Step struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

type Slot struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Steps     []Step `json:"steps"`
}

// SecondDoseDate is the date part of the recommended second dose start
// (steps[1]).
func (s Slot) SecondDoseDate() (string, bool) {
	if len(s.Steps) < 2 || s.Steps[1].StartDate == "" {
		return "", false
	}
	date, _, _ := strings.Cut(s.Steps[1].StartDate, "T")
	return date, true
}

// Patient is a master patient of the logged-in account. The full record is
// kept because the finalize call sends it back unchanged.
type Patient struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	record json.RawMessage
}

func (p *Patient) UnmarshalJSON(b []byte) error {
	type plain Patient
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Patient(v)
	p.record = append(json.RawMessage(nil), b...)
	return nil
}

func (p Patient) MarshalJSON() ([]byte, error) {
	if len(p.record) > 0 {
		return p.record, nil
	}
	return json.Marshal(map[string]any{
		"id":         p.ID,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	})
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Appointment describes one reservation attempt. MotiveIDs and AgendaIDs
// are already joined so the first-dose create and the second-dose update
// carry identical strings.
type Appointment struct {
	ProfileID   ID
	MotiveIDs   string
	AgendaIDs   string
	PracticeID  ID
	StartDate   string
	SecondSlot  string
	ID          ID
	Confirmed   bool
	FirstDoseID ID
}
