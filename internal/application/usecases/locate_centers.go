package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/doctoshotgun/internal/domain/booking"
	"github.com/example/doctoshotgun/internal/internaltypes"
)

// LocateCenters enumerates the vaccination centers of a city.
type LocateCenters struct {
	Provider     booking.Provider
	RefMotiveIDs []string
	// Fallbacks are static centers per normalized city, yielded after the
	// search results.
	Fallbacks map[string][]booking.Center
	Logger    *zap.Logger
}

// Walk calls fn for every center of city in search order. Detail lookups
// happen lazily between calls so fn sees fresh results. Walk stops early
// when fn reports done or returns an error.
//
// A 503 from the city search ends the walk with no centers and no error.
// An unknown city returns booking.ErrCityNotFound.
func (u LocateCenters) Walk(ctx context.Context, city string, fn func(booking.Center) (bool, error)) error {
	if u.Provider == nil {
		return fmt.Errorf("provider is nil")
	}
	log := u.logger()

	ids, err := u.Provider.SearchCenters(ctx, city, u.RefMotiveIDs)
	if err != nil {
		if internaltypes.StatusOf(err) == http.StatusServiceUnavailable {
			log.Warn("center search unavailable", zap.String("city", city))
			return nil
		}
		return err
	}
	log.Debug("center search", zap.String("city", city), zap.Int("results", len(ids)))

	for _, id := range ids {
		c, err := u.Provider.CenterResult(ctx, id, u.RefMotiveIDs)
		if err != nil {
			return fmt.Errorf("search result %s: %w", id, err)
		}
		if c == nil {
			log.Debug("skip search result without center", zap.String("id", id.String()))
			continue
		}
		done, err := fn(*c)
		if err != nil || done {
			return err
		}
	}

	for _, c := range u.Fallbacks[city] {
		done, err := fn(c)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func (u LocateCenters) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

// IsCityNotFound reports whether err ends the whole run.
func IsCityNotFound(err error) bool {
	return errors.Is(err, booking.ErrCityNotFound)
}
