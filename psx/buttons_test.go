package psx

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_NoChange(t *testing.T) {
	for _, m := range []uint16{0x0000, 0xFFFF, 0xFEFF, 0x1234} {
		events := Diff(m, m)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	}
}

func TestDiff_OneEventPerChangedBit(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		old, cur := uint16(r.Uint32()), uint16(r.Uint32())
		events := Diff(old, cur)

		require.Len(t, events, bits.OnesCount16(old^cur))
		for j, ev := range events {
			assert.NotEqual(t, old&(1<<ev.ID), cur&(1<<ev.ID))
			assert.Equal(t, cur&(1<<ev.ID) == 0, ev.Pressed)
			assert.NotEqual(t, ev.Pressed, ev.Released)
			assert.Equal(t, ev.ID.String(), ev.Name)
			if j > 0 {
				assert.Less(t, int(events[j-1].ID), int(ev.ID))
			}
		}
	}
}

func TestDiff_SelectPressed(t *testing.T) {
	events := Diff(0xFFFF, 0xFFFE)
	assert.Equal(t, []ButtonEvent{{ID: ButtonSelect, Pressed: true, Name: "SELECT"}}, events)

	events = Diff(0xFFFE, 0xFFFF)
	assert.Equal(t, []ButtonEvent{{ID: ButtonSelect, Released: true, Name: "SELECT"}}, events)
}

func TestButton_Names(t *testing.T) {
	want := []string{
		"SELECT", "L3", "R3", "START", "UP", "RIGHT", "DOWN", "LEFT",
		"L2", "R2", "L1", "R1", "TRIANGLE", "CIRCLE", "CROSS", "SQUARE",
	}
	for i, name := range want {
		assert.Equal(t, name, Button(i).String())
	}
	assert.Equal(t, "UNKNOWN", Button(16).String())
}

func TestButton_HasPressure(t *testing.T) {
	for _, b := range []Button{ButtonSelect, ButtonL3, ButtonR3, ButtonStart, Button(20)} {
		assert.False(t, b.HasPressure(), b.String())
	}
	for _, b := range []Button{ButtonUp, ButtonCross, ButtonL2, ButtonR1} {
		assert.True(t, b.HasPressure(), b.String())
	}
}
