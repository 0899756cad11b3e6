// Package sequencer implements the step-grid sequencer: a Clock driving up
// to 16 TrackPatterns per Pattern, each step gated by a TrigCondition and
// capable of retrigging, microtiming, and per-step parameter locks. Patterns
// chain (Chain) or sequence into a Song; Perform mode lets a single pattern
// be auditioned and discarded without touching the song.
package sequencer

// EventKind names a callback notification the sequencer can raise.
type EventKind int

const (
	EventPatternLooped EventKind = iota
	EventSongRowAdvanced
	EventSongEnded
)

// VoiceEngine is the playback target a Sequencer drives: one call per
// trigger, addressed by track index.
type VoiceEngine interface {
	NoteOn(track, note, velocity int)
	NoteOff(track int)
	// SetParamLock applies a single step's parameter-lock value for the
	// duration of that step; paramID is caller-defined (e.g. a
	// modmatrix.ParamRef index).
	SetParamLock(track, paramID int, value float64)
}

// Options configures a Sequencer at construction.
type Options struct {
	OnEvent func(EventKind)
	Seed    uint64
}

// PlayMode selects what drives track advancement.
type PlayMode int

const (
	ModePattern PlayMode = iota
	ModeChain
	ModeSong
)

type eventKind int

const (
	evNoteOn eventKind = iota
	evNoteOff
)

type scheduledEvent struct {
	firePulse int64
	kind      eventKind
	track     int
	note      int
	velocity  int
}

type trackPlayhead struct {
	pageIndex      int
	stepIndex      int
	pulsesRemaining float64
	passNumber     int
	prevFired      bool
}

// Sequencer walks a Pattern (or a Chain of patterns, or a Song of chained
// rows) one clock pulse at a time, firing VoiceEngine calls at sample
// accuracy.
type Sequencer struct {
	engine VoiceEngine
	clock  *Clock
	rng    *rngState
	onEvent func(EventKind)

	pattern *Pattern
	chain   *Chain
	song    *Song

	mode         PlayMode
	chainPos     int
	songRow      int
	songRepeats  int

	playheads [TracksPerPattern]trackPlayhead
	neighborFired [TracksPerPattern]bool

	pulse   int64
	pending []scheduledEvent

	fillLatched   bool
	fillMomentary bool

	performActive bool
	performSaved  *Pattern
}

// New creates a Sequencer bound to engine/pattern, running at sampleRate.
func New(engine VoiceEngine, pattern *Pattern, sampleRate int) *Sequencer {
	return NewWithOptions(engine, pattern, sampleRate, Options{})
}

// NewWithOptions is New with explicit Options.
func NewWithOptions(engine VoiceEngine, pattern *Pattern, sampleRate int, opts Options) *Sequencer {
	s := &Sequencer{
		engine:  engine,
		clock:   NewClock(sampleRate),
		rng:     newRNG(opts.Seed),
		onEvent: opts.OnEvent,
		pattern: pattern,
	}
	s.clock.SetTempo(pattern.Tempo)
	for i := range s.playheads {
		s.playheads[i] = trackPlayhead{}
	}
	return s
}

// StepDurationSeconds returns the duration, at the clock's current tempo, of
// one 16th-note grid step — the control-rate tick unit modmatrix.TrackSources
// and each voice's FX/mod LFOs advance by once per audio block.
func (s *Sequencer) StepDurationSeconds() float64 {
	return (60.0 / s.clock.BPM()) / 4.0
}

// SetFillLatched toggles fill mode for every subsequent pass until toggled
// off again.
func (s *Sequencer) SetFillLatched(on bool) { s.fillLatched = on }

// SetFillMomentary marks fill mode active for the current step only; it is
// cleared automatically after the next dispatch.
func (s *Sequencer) SetFillMomentary(on bool) { s.fillMomentary = on }

func (s *Sequencer) fillActive() bool { return s.fillLatched || s.fillMomentary }

// EnterPerformMode snapshots the active pattern so step edits made while
// auditioning can be discarded with ExitPerformMode.
func (s *Sequencer) EnterPerformMode() {
	if s.performActive {
		return
	}
	saved := *s.pattern
	for i := range saved.Tracks {
		pages := append([]Page(nil), saved.Tracks[i].Pages...)
		for p := range pages {
			for st := range pages[p].Steps {
				pages[p].Steps[st].Locks = append([]ParamLock(nil), pages[p].Steps[st].Locks...)
			}
		}
		saved.Tracks[i].Pages = pages
	}
	s.performSaved = &saved
	s.performActive = true
}

// ExitPerformMode restores the pattern as it was when EnterPerformMode was
// called, discarding any edits made during the performance.
func (s *Sequencer) ExitPerformMode() {
	if !s.performActive {
		return
	}
	*s.pattern = *s.performSaved
	s.performSaved = nil
	s.performActive = false
}

// Advance runs the sequencer forward by one audio sample, firing any
// VoiceEngine calls whose time has come.
func (s *Sequencer) Advance() {
	pulses := s.clock.Advance()
	for i := 0; i < pulses; i++ {
		s.pulse++
		s.dispatchPulse()
	}
	s.firePending()
	if pulses > 0 {
		s.fillMomentary = false
	}
}

func (s *Sequencer) firePending() {
	kept := s.pending[:0]
	for _, ev := range s.pending {
		if ev.firePulse > s.pulse {
			kept = append(kept, ev)
			continue
		}
		switch ev.kind {
		case evNoteOn:
			s.engine.NoteOn(ev.track, ev.note, ev.velocity)
		case evNoteOff:
			s.engine.NoteOff(ev.track)
		}
	}
	s.pending = kept
}

func (s *Sequencer) dispatchPulse() {
	for t := 0; t < TracksPerPattern; t++ {
		ph := &s.playheads[t]
		if ph.pulsesRemaining > 0 {
			ph.pulsesRemaining--
			continue
		}
		s.neighborFired[t] = s.advanceTrack(t, ph)
	}
}

// advanceTrack evaluates and (if triggered) schedules the current step of
// track t, then advances its playhead to the following step. It returns
// whether the step fired, so dispatchPulse can feed the Nei/¬Nei condition
// of the next-higher track (later in the same pulse; track 0 reads track
// 15's outcome on the following pulse).
func (s *Sequencer) advanceTrack(t int, ph *trackPlayhead) bool {
	tp := &s.pattern.Tracks[t]
	if len(tp.Pages) == 0 {
		return false
	}
	page := &tp.Pages[ph.pageIndex%len(tp.Pages)]
	if page.Length <= 0 {
		page.Length = StepsPerPage
	}
	step := &page.Steps[ph.stepIndex%page.Length]

	// Nei/¬Nei reference the adjacent lower-numbered track specifically
	// (spec.md §4.10), wrapping track 0 to track 15. Tracks are dispatched
	// in index order within a pulse, so for t>0 this reads the neighbor's
	// already-evaluated outcome for the current pulse; track 0's neighbor
	// (15) hasn't been dispatched yet this pulse, so it reads track 15's
	// outcome from the previous pulse (spec.md §9 Open Question, resolved
	// as "wraps").
	neighborTrack := (t - 1 + TracksPerPattern) % TracksPerPattern
	neighbor := s.neighborFired[neighborTrack]

	ps := passState{
		fillActive:    s.fillActive(),
		prevStepFired: ph.prevFired,
		neighborFired: neighbor,
		passNumber:    ph.passNumber + 1,
		isFirstPass:   ph.passNumber == 0,
	}

	fired := step.Active && step.Condition.evaluate(ps, s.rng)
	ph.prevFired = fired

	basePulses := float64(PPQN) / 4.0
	scale := page.RateScale
	if scale <= 0 {
		scale = 1
	}
	stepPulses := basePulses / scale
	if s.pattern.Swing > 0 && ph.stepIndex%2 == 1 {
		stepPulses += s.pattern.Swing * stepPulses
	}

	if fired {
		s.scheduleStep(t, step, stepPulses)
	}

	ph.stepIndex++
	if ph.stepIndex >= page.Length {
		ph.stepIndex = 0
		ph.pageIndex++
		if ph.pageIndex >= len(tp.Pages) {
			ph.pageIndex = 0
			ph.passNumber++
			if tp.Reset == ResetOnPatternChange {
				ph.stepIndex = 0
			}
		}
	}
	ph.pulsesRemaining = stepPulses - 1
	return fired
}

func (s *Sequencer) scheduleStep(track int, step *Step, stepPulses float64) {
	for _, lock := range step.Locks {
		s.engine.SetParamLock(track, lock.ParamID, lock.Value)
	}

	offset := int64(step.MicroTiming * stepPulses)
	fireAt := s.pulse + offset
	if fireAt < s.pulse {
		fireAt = s.pulse
	}

	length := step.LengthSteps
	if length <= 0 {
		length = 1
	}
	noteOffAt := fireAt + int64(length*stepPulses)

	if step.Retrig.Subdivisions <= 1 {
		s.pending = append(s.pending,
			scheduledEvent{firePulse: fireAt, kind: evNoteOn, track: track, note: step.Note, velocity: step.Velocity},
			scheduledEvent{firePulse: noteOffAt, kind: evNoteOff, track: track},
		)
		return
	}

	subs := step.Retrig.Subdivisions
	span := noteOffAt - fireAt
	if span < int64(subs) {
		span = int64(subs)
	}
	for i := 0; i < subs; i++ {
		t := fireAt + (span*int64(i))/int64(subs)
		vel := retrigVelocity(step.Velocity, step.Retrig.VelocityCurve, i, subs)
		s.pending = append(s.pending, scheduledEvent{firePulse: t, kind: evNoteOn, track: track, note: step.Note, velocity: vel})
	}
	s.pending = append(s.pending, scheduledEvent{firePulse: noteOffAt, kind: evNoteOff, track: track})
}

// retrigVelocity scales velocity across a retrig run following curve: 0 is
// flat, positive fades in toward the final repeat, negative fades out from
// the first.
func retrigVelocity(base int, curve float64, i, n int) int {
	if curve == 0 || n <= 1 {
		return base
	}
	frac := float64(i) / float64(n-1)
	var scale float64
	if curve > 0 {
		scale = frac*curve + (1 - curve)
	} else {
		scale = (1-frac)*(-curve) + (1 + curve)
	}
	v := int(float64(base) * scale)
	if v < 0 {
		v = 0
	}
	if v > 127 {
		v = 127
	}
	return v
}
