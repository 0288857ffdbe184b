package keylabel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func press(keysym string) KeyEvent   { return KeyEvent{Keysym: keysym, Pressed: true} }
func release(keysym string) KeyEvent { return KeyEvent{Keysym: keysym} }

func TestTrackerHeld(t *testing.T) {
	var tr Tracker

	st := tr.Observe(press("Control_L"))
	assert.Equal(t, ModCtrl, st.Held)

	st = tr.Observe(press("Shift_R"))
	assert.Equal(t, ModCtrl|ModShift, st.Held)

	st = tr.Observe(release("Control_L"))
	assert.Equal(t, ModShift, st.Held)
	assert.Zero(t, st.Tapped)

	st = tr.Observe(release("Shift_R"))
	assert.Zero(t, st.Held)
	assert.Zero(t, st.Tapped, "shift was pressed while ctrl was held")
}

func TestTrackerBothSides(t *testing.T) {
	var tr Tracker

	tr.Observe(press("Shift_L"))
	tr.Observe(press("Shift_R"))
	st := tr.Observe(release("Shift_R"))
	assert.Equal(t, ModShift, st.Held, "Shift_L is still down")

	st = tr.Observe(release("Shift_L"))
	assert.Zero(t, st.Held)

	tr.Observe(press("Control_R"))
	tr.Observe(press("Control_L"))
	st = tr.Observe(release("Control_R"))
	assert.Equal(t, ModCtrl, st.Held)

	tr.Reset()
	assert.Zero(t, tr.State().Held)
}

func TestTrackerTap(t *testing.T) {
	tests := []struct {
		name   string
		events []KeyEvent
		want   Modifiers
	}{
		{
			name:   "lone ctrl",
			events: []KeyEvent{press("Control_L"), release("Control_L")},
			want:   ModCtrl,
		},
		{
			name:   "autorepeat keeps the tap",
			events: []KeyEvent{press("Alt_L"), press("Alt_L"), release("Alt_L")},
			want:   ModAlt,
		},
		{
			name:   "key in between",
			events: []KeyEvent{press("Control_L"), press("c"), release("c"), release("Control_L")},
			want:   0,
		},
		{
			name:   "other modifier held",
			events: []KeyEvent{press("Alt_L"), press("Control_L"), release("Control_L")},
			want:   0,
		},
		{
			name:   "caps lock in between",
			events: []KeyEvent{press("Super_L"), press("Caps_Lock"), release("Super_L")},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Tracker
			var st ModifierState
			for _, ev := range tt.events {
				st = tr.Observe(ev)
			}
			assert.Equal(t, tt.want, st.Tapped)
		})
	}
}

func TestTrackerCapsLock(t *testing.T) {
	var tr Tracker

	tr.Observe(press("Caps_Lock"))
	st := tr.Observe(release("Caps_Lock"))
	assert.True(t, st.Held.Has(ModCapsLock))

	tr.Observe(press("Caps_Lock"))
	assert.False(t, tr.State().Held.Has(ModCapsLock))

	tr.Observe(press("Shift_L"))
	tr.Reset()
	assert.Zero(t, tr.State().Held)
}

func TestModifierOf(t *testing.T) {
	assert.Equal(t, ModShift, ModifierOf("Shift_L"))
	assert.Equal(t, ModAlt, ModifierOf("Meta_R"))
	assert.Equal(t, ModAltGr, ModifierOf("ISO_Level3_Shift"))
	assert.Zero(t, ModifierOf("a"))
	assert.Zero(t, ModifierOf("Caps_Lock"))
}
