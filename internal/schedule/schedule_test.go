package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFiresOnceDue(t *testing.T) {
	s := New()
	fired := 0
	s.After(800*time.Millisecond, func() { fired++ })

	s.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, s.Pending())

	s.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, s.Pending())

	s.Advance(time.Second)
	assert.Equal(t, 1, fired)
}

func TestFiresInTimeThenScheduleOrder(t *testing.T) {
	s := New()
	var order []string
	s.After(2*time.Second, func() { order = append(order, "c") })
	s.After(time.Second, func() { order = append(order, "a") })
	s.After(time.Second, func() { order = append(order, "b") })

	s.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChainedTimersFireWithinWindow(t *testing.T) {
	s := New()
	var at []time.Duration
	s.After(time.Second, func() {
		at = append(at, s.Now())
		s.After(time.Second, func() { at = append(at, s.Now()) })
	})

	s.Advance(5 * time.Second)
	require.Len(t, at, 2)
	assert.Equal(t, time.Second, at[0])
	assert.Equal(t, 2*time.Second, at[1])
	assert.Equal(t, 5*time.Second, s.Now())
}

func TestStop(t *testing.T) {
	s := New()
	fired := false
	tm := s.After(time.Second, func() { fired = true })
	assert.True(t, tm.Active())

	assert.True(t, s.Stop(tm))
	assert.False(t, tm.Active())
	assert.False(t, s.Stop(tm))

	s.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestStopAfterFire(t *testing.T) {
	s := New()
	tm := s.After(0, func() {})
	s.Advance(0)
	assert.False(t, s.Stop(tm))
}

func TestClear(t *testing.T) {
	s := New()
	fired := 0
	a := s.After(time.Second, func() { fired++ })
	s.After(2*time.Second, func() { fired++ })

	s.Clear()
	s.Advance(time.Minute)
	assert.Equal(t, 0, fired)
	assert.False(t, a.Active())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, time.Duration(0), Seconds(0))
}
