// Package session sequences the screens of one visitor's compatibility
// reading and keeps every visitor's state in memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BerylCAtieno/destiny-match/internal/analysis"
	"github.com/BerylCAtieno/destiny-match/internal/models"
	"go.uber.org/zap"
)

// AnalysisFailedNotice is shown on the landing screen after a failed analysis.
const AnalysisFailedNotice = "Failed to analyze compatibility. Please check your connection or API Key."

var ErrInvalidTransition = errors.New("invalid screen transition")

// State is everything the screens render from.
type State struct {
	Screen  Screen                      `json:"screen"`
	PersonA *models.Profile             `json:"personA,omitempty"`
	PersonB *models.Profile             `json:"personB,omitempty"`
	Result  *models.CompatibilityResult `json:"result,omitempty"`
}

// Snapshot is a deep copy of the state plus the pending user notice.
type Snapshot struct {
	State
	Notice string `json:"notice,omitempty"`
}

// Sequencer owns the screen state machine. It is safe for concurrent use;
// entry to Analyzing is gated so at most one analysis runs at a time.
type Sequencer struct {
	analyzer analysis.Analyzer
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	notice string
	run    uint64 // bumped on every entry to Analyzing and on Reset
}

func NewSequencer(analyzer analysis.Analyzer, logger *zap.Logger) *Sequencer {
	return &Sequencer{analyzer: analyzer, logger: logger}
}

// Start leaves the landing screen for the input form.
func (s *Sequencer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(Landing); err != nil {
		return err
	}
	s.notice = ""
	s.moveTo(Input)
	return nil
}

// SubmitProfiles stores both profiles and moves to Payment. Incomplete input
// leaves the sequencer on Input.
func (s *Sequencer) SubmitProfiles(a, b models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(Input); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("first person: %w", err)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("second person: %w", err)
	}

	s.state.PersonA = &a
	s.state.PersonB = &b
	s.moveTo(Payment)
	return nil
}

// CancelPayment returns to the form with the entered profiles kept.
func (s *Sequencer) CancelPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(Payment); err != nil {
		return err
	}
	s.moveTo(Input)
	return nil
}

// CompletePayment moves to Analyzing and blocks on the analysis. See
// CompletePaymentAsync for the outcome handling.
func (s *Sequencer) CompletePayment(ctx context.Context) error {
	a, b, run, err := s.beginAnalysis()
	if err != nil {
		return err
	}
	return s.runAnalysis(ctx, a, b, run)
}

// CompletePaymentAsync moves to Analyzing before returning and runs the
// analysis in the background. The channel receives the outcome and is closed.
//
// On success the sequencer shows the result. On failure it records a notice,
// forgets the profiles and goes back to Landing; the reading cannot be retried.
func (s *Sequencer) CompletePaymentAsync(ctx context.Context) (<-chan error, error) {
	a, b, run, err := s.beginAnalysis()
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.runAnalysis(ctx, a, b, run)
	}()
	return done, nil
}

// Reset discards everything and returns to Landing from any screen.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{State: State{Screen: s.state.Screen}, Notice: s.notice}
	if s.state.PersonA != nil {
		a := *s.state.PersonA
		snap.PersonA = &a
	}
	if s.state.PersonB != nil {
		b := *s.state.PersonB
		snap.PersonB = &b
	}
	snap.Result = s.state.Result.Clone()
	return snap
}

// TakeNotice returns the pending notice and clears it.
func (s *Sequencer) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.notice
	s.notice = ""
	return n
}

func (s *Sequencer) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Screen
}

func (s *Sequencer) beginAnalysis() (a, b models.Profile, run uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(Payment); err != nil {
		return a, b, 0, err
	}
	if s.state.PersonA == nil || s.state.PersonB == nil {
		return a, b, 0, fmt.Errorf("%w: payment without profiles", ErrInvalidTransition)
	}
	s.run++
	s.moveTo(Analyzing)
	return *s.state.PersonA, *s.state.PersonB, s.run, nil
}

func (s *Sequencer) runAnalysis(ctx context.Context, a, b models.Profile, run uint64) error {
	result, err := s.analyzer.Analyze(ctx, a, b)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != run || s.state.Screen != Analyzing {
		s.logger.Info("discarding analysis outcome for a session that moved on", zap.Stringer("screen", s.state.Screen))
		return err
	}

	if err == nil {
		err = result.Validate()
	}
	if err != nil {
		s.logger.Error("compatibility analysis failed", zap.Error(err))
		s.clear()
		s.notice = AnalysisFailedNotice
		return err
	}

	s.state.Result = result
	s.moveTo(Result)
	return nil
}

func (s *Sequencer) expect(want Screen) error {
	if s.state.Screen != want {
		return fmt.Errorf("%w: on %s, want %s", ErrInvalidTransition, s.state.Screen, want)
	}
	return nil
}

func (s *Sequencer) moveTo(next Screen) {
	s.logger.Debug("screen transition", zap.Stringer("from", s.state.Screen), zap.Stringer("to", next))
	s.state.Screen = next
}

func (s *Sequencer) clear() {
	s.moveTo(Landing)
	s.state = State{}
	s.run++
}
