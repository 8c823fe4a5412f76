package booking

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// FindBestSlot picks the slot to book from a day list: the first day with
// any slots wins and, within it, the last slot is taken. The rule is the
// service's own booking widget behaviour and must not be "improved" to the
// earliest slot.
//
// ErrNoSlot is returned when every day is empty, ErrMalformedSlot when the
// chosen entry is not a slot object (the service sometimes sends bare
// timestamps).
func FindBestSlot(days []Day) (Slot, error) {
	for _, d := range days {
		if len(d.Slots) == 0 {
			continue
		}
		raw := d.Slots[len(d.Slots)-1]
		if !gjson.ParseBytes(raw).IsObject() {
			return Slot{}, fmt.Errorf("%w: %s", ErrMalformedSlot, raw)
		}
		var s Slot
		if err := json.Unmarshal(raw, &s); err != nil {
			return Slot{}, fmt.Errorf("%w: %v", ErrMalformedSlot, err)
		}
		return s, nil
	}
	return Slot{}, ErrNoSlot
}
