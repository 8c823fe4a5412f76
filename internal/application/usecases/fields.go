package usecases

import (
	"context"
	"fmt"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

// covidConsentField is answered "Non" without asking.
const covidConsentField = "cov19"

// LinePrompter reads one line of operator input.
type LinePrompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// FieldResolver fills the required custom fields of an appointment.
type FieldResolver struct {
	Prompter LinePrompter
}

func (r FieldResolver) Resolve(ctx context.Context, fields []booking.CustomField) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		switch {
		case f.ID == covidConsentField:
			values[f.ID] = "Non"
		case f.Placeholder != "":
			values[f.ID] = f.Placeholder
		default:
			if r.Prompter == nil {
				return nil, fmt.Errorf("custom field %q needs input", f.ID)
			}
			v, err := r.Prompter.ReadLine(ctx, fmt.Sprintf("%s (%s):", f.Label, f.Placeholder))
			if err != nil {
				return nil, fmt.Errorf("custom field %q: %w", f.ID, err)
			}
			values[f.ID] = v
		}
	}
	return values, nil
}
