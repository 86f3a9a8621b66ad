package prompt

import (
	"sort"

	"telemarketing/internal/model"
)

// SlotCount is the number of ranked factors the customer prompt narrates.
const SlotCount = 5

var ordinals = [SlotCount]string{"Primary", "Secondary", "Third", "Fourth", "Fifth"}

// Slots holds a customer's top drivers by rank. Unfilled slots are nil and
// are left out of the rendered prompt; the prompt states how many factors it
// carries instead of padding with placeholders.
type Slots [SlotCount]*model.DriverRecord

// FillSlots ranks the usable drivers by |impact| (stable, so equal
// magnitudes keep caller order) and fills up to SlotCount slots.
func FillSlots(drivers []model.DriverRecord) Slots {
	var s Slots
	for i, d := range TopFeatures(drivers, SlotCount) {
		s[i] = &d
	}
	return s
}

// Filled counts the occupied slots.
func (s Slots) Filled() int {
	n := 0
	for _, d := range s {
		if d != nil {
			n++
		}
	}
	return n
}

// Label names slot i, e.g. "Primary Driver".
func Label(i int) string {
	return ordinals[i] + " Driver"
}

// TopFeatures returns up to n usable drivers ordered by descending |impact|.
// A non-positive n returns all of them.
func TopFeatures(drivers []model.DriverRecord, n int) []model.DriverRecord {
	usable := make([]model.DriverRecord, 0, len(drivers))
	for _, d := range drivers {
		if d.Usable() {
			usable = append(usable, d)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Magnitude() > usable[j].Magnitude()
	})
	if n > 0 && len(usable) > n {
		usable = usable[:n]
	}
	return usable
}
