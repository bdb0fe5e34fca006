package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlots_FullDay(t *testing.T) {
	slots := GenerateSlots(MustTimeOfDay(8, 0), MustTimeOfDay(19, 0), 30)

	require.Len(t, slots, 22)
	require.Equal(t, "8:00 AM", slots[0].Label())
	require.Equal(t, "6:30 PM", slots[len(slots)-1].Label())
	for _, slot := range slots {
		require.NotEqual(t, "7:00 PM", slot.Label())
		require.Contains(t, []int{0, 30}, slot.Minute)
	}
}

func TestGenerateSlots_EmptyRanges(t *testing.T) {
	nine := MustTimeOfDay(9, 0)
	ten := MustTimeOfDay(10, 0)

	require.Empty(t, GenerateSlots(nine, nine, 30))
	require.Empty(t, GenerateSlots(ten, nine, 30))
	require.Empty(t, GenerateSlots(nine, ten, 0))
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	a := GenerateSlots(MustTimeOfDay(8, 0), MustTimeOfDay(17, 0), 30)
	b := GenerateSlots(MustTimeOfDay(8, 0), MustTimeOfDay(17, 0), 30)
	require.Equal(t, a, b)
	require.Len(t, a, 18)
}

func TestTimeSlot_Labels(t *testing.T) {
	cases := []struct {
		slot  TimeSlot
		label string
	}{
		{TimeSlot{Hour: 0, Minute: 0}, "12:00 AM"},
		{TimeSlot{Hour: 8, Minute: 30}, "8:30 AM"},
		{TimeSlot{Hour: 12, Minute: 0}, "12:00 PM"},
		{TimeSlot{Hour: 18, Minute: 30}, "6:30 PM"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.label, tc.slot.Label())
		parsed, err := ParseSlotLabel(tc.label)
		require.NoError(t, err)
		require.Equal(t, tc.slot, parsed)
	}
}

func TestParseSlotLabel_Normalizes(t *testing.T) {
	slot, err := ParseSlotLabel("  9:00   am ")
	require.NoError(t, err)
	require.Equal(t, "9:00 AM", slot.Label())

	_, err = ParseSlotLabel("09:00")
	require.Error(t, err)
}

func TestTimeSlot_JSON(t *testing.T) {
	data, err := json.Marshal(TimeSlot{Hour: 14, Minute: 30})
	require.NoError(t, err)
	require.JSONEq(t, `"2:30 PM"`, string(data))

	var slot TimeSlot
	require.NoError(t, json.Unmarshal([]byte(`"2:30 PM"`), &slot))
	require.Equal(t, TimeSlot{Hour: 14, Minute: 30}, slot)
}
