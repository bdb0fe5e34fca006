package schedule

// GenerateSlots returns start times within [start, end) stepping by stepMinutes.
// The end itself is never offered. Empty when start >= end or step is not positive.
func GenerateSlots(start, end TimeOfDay, stepMinutes int) []TimeSlot {
	if stepMinutes <= 0 || !start.Before(end) {
		return []TimeSlot{}
	}
	slots := make([]TimeSlot, 0, (end.Minutes()-start.Minutes()+stepMinutes-1)/stepMinutes)
	for m := start.Minutes(); m < end.Minutes(); m += stepMinutes {
		slots = append(slots, TimeSlot{Hour: m / 60, Minute: m % 60})
	}
	return slots
}

// SlotsForHours generates the slots of one business day; closed days yield none.
func SlotsForHours(hours BusinessHours, stepMinutes int) []TimeSlot {
	if !hours.Open || hours.Start == nil || hours.End == nil {
		return []TimeSlot{}
	}
	return GenerateSlots(*hours.Start, *hours.End, stepMinutes)
}
