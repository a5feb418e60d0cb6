package session

import (
	"context"
	"testing"
	"time"

	"github.com/BerylCAtieno/destiny-match/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)}
	st := NewStore(&stubAnalyzer{result: sampleResult()}, ttl, zap.NewNop())
	st.now = clock.now
	return st, clock
}

func TestStore_CreateGetDelete(t *testing.T) {
	st, _ := newTestStore(time.Hour)

	s := st.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, Landing, s.Seq.Screen())

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	other := st.Create()
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, st.Len())

	st.Delete(s.ID)
	_, ok = st.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestStore_Sweep(t *testing.T) {
	st, clock := newTestStore(time.Hour)

	idle := st.Create()
	active := st.Create()

	busy := st.Create()
	an := &stubAnalyzer{result: sampleResult(), block: make(chan struct{})}
	busy.Seq = NewSequencer(an, zap.NewNop())
	toPayment(t, busy.Seq)
	done, err := busy.Seq.CompletePaymentAsync(context.Background())
	require.NoError(t, err)

	clock.advance(50 * time.Minute)
	_, _ = st.Get(active.ID)
	clock.advance(20 * time.Minute)

	assert.Equal(t, 1, st.Sweep())

	_, ok := st.Get(idle.ID)
	assert.False(t, ok)
	_, ok = st.Get(active.ID)
	assert.True(t, ok)
	_, ok = st.Get(busy.ID)
	assert.True(t, ok, "sessions waiting on an analysis are kept")

	close(an.block)
	require.NoError(t, <-done)
}

func TestStore_SweepDisabled(t *testing.T) {
	st, clock := newTestStore(0)
	st.Create()
	clock.advance(24 * time.Hour)
	assert.Zero(t, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

func TestStore_RunStopsWithContext(t *testing.T) {
	st, _ := newTestStore(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	assert.NoError(t, <-errc)
}

func TestSession_Gate(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	assert.Nil(t, s.Gate())

	g := payment.NewGate(nil, payment.GateConfig{}, func(context.Context) error { return nil }, zap.NewNop())
	s.SetGate(g)
	assert.Same(t, g, s.Gate())

	s.ClearGate()
	assert.Nil(t, s.Gate())
}

func TestSession_ReleaseGate(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	noop := func(context.Context) error { return nil }

	old := payment.NewGate(nil, payment.GateConfig{}, noop, zap.NewNop())
	current := payment.NewGate(nil, payment.GateConfig{}, noop, zap.NewNop())
	s.SetGate(current)

	s.ReleaseGate(old)
	assert.Same(t, current, s.Gate(), "a stale gate does not clear the current one")

	s.ReleaseGate(current)
	assert.Nil(t, s.Gate())
}
