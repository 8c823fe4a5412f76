package usecases

import (
	"context"
	"fmt"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

// maxPolls bounds a next_slot chain that never terminates.
const maxPolls = 64

// PollAvailability queries first-dose availabilities starting at
// q.StartDate and follows the next_slot hint of every response until the
// service stops sending one. The last page is returned.
//
// Polling also stops, without error, when a hint names a date that was
// already queried or after maxPolls queries. Either way the last page
// received is returned, so a cycling or endless chain ends as a normal
// place outcome.
type PollAvailability struct {
	Provider booking.Provider
}

func (u PollAvailability) Execute(ctx context.Context, q booking.AvailabilityQuery) (*booking.Availabilities, error) {
	if u.Provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	seen := make(map[string]bool)
	var page *booking.Availabilities
	for i := 0; i < maxPolls; i++ {
		seen[q.StartDate] = true
		var err error
		page, err = u.Provider.Availabilities(ctx, q)
		if err != nil {
			return nil, err
		}
		next, ok := page.Next()
		if !ok || seen[next] {
			return page, nil
		}
		q.StartDate = next
	}
	return page, nil
}
