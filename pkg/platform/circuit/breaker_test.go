package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

// fail records n failures and returns the last outcome.
func fail(b *Breaker, n int) (bool, StateChange) {
	var useFallback bool
	var change StateChange
	for range n {
		useFallback, change = b.RecordFailure()
	}
	return useFallback, change
}

func succeed(b *Breaker, n int) (bool, StateChange) {
	var usePrimary bool
	var change StateChange
	for range n {
		usePrimary, change = b.RecordSuccess()
	}
	return usePrimary, change
}

func (s *BreakerSuite) TestDefaults() {
	b := New("geocoder")

	s.Equal("geocoder", b.Name())
	s.Equal(StateClosed, b.State())
	s.Equal("closed", b.State().String())

	useFallback, _ := fail(b, 4)
	s.False(useFallback, "default threshold is five failures")
	useFallback, change := b.RecordFailure()
	s.True(useFallback)
	s.True(change.Opened)
	s.Equal("open", b.State().String())
}

func (s *BreakerSuite) TestOpening() {
	s.Run("opens exactly at the failure threshold", func() {
		b := New("geocoder", WithFailureThreshold(2))

		useFallback, change := b.RecordFailure()
		s.False(useFallback)
		s.False(change.Opened)

		useFallback, change = b.RecordFailure()
		s.True(useFallback)
		s.True(change.Opened)
		s.True(b.IsOpen())
	})

	s.Run("a success between failures restarts the count", func() {
		b := New("geocoder", WithFailureThreshold(2))

		b.RecordFailure()
		b.RecordSuccess()
		useFallback, _ := b.RecordFailure()

		s.False(useFallback)
		s.False(b.IsOpen())
	})

	s.Run("failures while open report no transition", func() {
		b := New("geocoder", WithFailureThreshold(1))
		fail(b, 1)

		useFallback, change := b.RecordFailure()
		s.True(useFallback)
		s.Equal(StateChange{}, change)
	})

	s.Run("non-positive thresholds keep the defaults", func() {
		b := New("geocoder", WithFailureThreshold(0), WithSuccessThreshold(-1))

		fail(b, 5)
		s.True(b.IsOpen())
		usePrimary, _ := succeed(b, 2)
		s.False(usePrimary)
		usePrimary, _ = b.RecordSuccess()
		s.True(usePrimary)
	})
}

func (s *BreakerSuite) TestClosing() {
	s.Run("closes after consecutive successes", func() {
		b := New("geocoder", WithFailureThreshold(1), WithSuccessThreshold(2))
		fail(b, 1)

		usePrimary, change := b.RecordSuccess()
		s.False(usePrimary)
		s.False(change.Closed)

		usePrimary, change = b.RecordSuccess()
		s.True(usePrimary)
		s.True(change.Closed)
		s.False(b.IsOpen())
	})

	s.Run("a failure while open restarts the success count", func() {
		b := New("geocoder", WithFailureThreshold(1), WithSuccessThreshold(2))
		fail(b, 1)

		b.RecordSuccess()
		b.RecordFailure()
		usePrimary, _ := b.RecordSuccess()

		s.False(usePrimary)
		s.True(b.IsOpen())
	})

	s.Run("reopening needs the full failure threshold again", func() {
		b := New("geocoder", WithFailureThreshold(2), WithSuccessThreshold(1))
		fail(b, 2)
		succeed(b, 1)

		useFallback, _ := b.RecordFailure()
		s.False(useFallback)
	})
}

func TestBreakerReset(t *testing.T) {
	b := New("geocoder", WithFailureThreshold(1))
	fail(b, 1)

	b.Reset()

	assert.False(t, b.IsOpen())
	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback, "counters start over after a reset")
}
