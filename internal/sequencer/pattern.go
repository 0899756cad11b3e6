package sequencer

// StepsPerPage is the fixed grid width of one page.
const StepsPerPage = 16

// PagesPerTrackPattern and StepsPerTrackPattern bound a track pattern's
// length: up to 16 pages of 16 steps, 256 steps total.
const (
	PagesPerTrackPattern  = 16
	StepsPerTrackPattern  = PagesPerTrackPattern * StepsPerPage
)

// TracksPerPattern mirrors the 16-track layout in package track.
const TracksPerPattern = 16

// PatternCount and SongCount are the fixed per-project limits (8 banks of 16
// patterns, 16 songs).
const (
	PatternCount = 128
	SongCount    = 16
)

// MaxChainEntries bounds a chain to 64 pattern references.
const MaxChainEntries = 64

// MaxSongRows bounds a song to 99 rows.
const MaxSongRows = 99

// Retrig re-fires a step's note at a subdivision of its length, each
// repeat's velocity following a curve from the original velocity.
type Retrig struct {
	Subdivisions  int     // 0 means no retrig
	VelocityCurve float64 // -1..1: negative fades out, positive fades in
}

// ParamLock overrides one destination's value for the duration of a single
// step, the step-grid analog of the old runtime patch-mod args.
type ParamLock struct {
	ParamID int
	Value   float64
}

// Step is one cell of a page's 16-step grid.
type Step struct {
	Active      bool
	Note        int
	Velocity    int     // 0..127
	LengthSteps float64 // note length in sub-steps
	MicroTiming float64 // -0.5..+0.5, fraction of a step
	Retrig      Retrig
	Condition   TrigCondition
	Locks       []ParamLock
}

// Page is 16 steps plus the per-page playback controls: how many of the 16
// steps actually play, and a rate scale relative to the pattern tempo.
type Page struct {
	Steps     [StepsPerPage]Step
	Length    int     // 1..16 active steps
	RateScale float64 // 0.125x .. 2x
}

// NewPage returns a page with all 16 steps active-length and unity rate.
func NewPage() Page {
	return Page{Length: StepsPerPage, RateScale: 1}
}

// ResetPolicy controls whether a track pattern restarts from step 0 on every
// pattern change or keeps running free across changes.
type ResetPolicy int

const (
	ResetOnPatternChange ResetPolicy = iota
	ResetFree
)

// TrackPattern is one track's sequence within a Pattern: up to 16 pages
// chained end to end.
type TrackPattern struct {
	Pages  []Page
	Reset  ResetPolicy
}

// NewTrackPattern returns a one-page track pattern.
func NewTrackPattern() TrackPattern {
	return TrackPattern{Pages: []Page{NewPage()}}
}

// TotalSteps is the sum of each page's active length.
func (tp *TrackPattern) TotalSteps() int {
	n := 0
	for _, p := range tp.Pages {
		n += p.Length
	}
	return n
}

// Pattern is a full 16-track pattern plus its own tempo, swing, time
// signature and scale — one of a project's 128 patterns (8 banks x 16).
type Pattern struct {
	Tracks      [TracksPerPattern]TrackPattern
	Tempo       float64
	Swing       float64 // 0..0.8, applied to even-numbered steps
	TimeSigNum  int
	TimeSigDen  int
	ScaleRoot   int
	ScaleName   string
}

// NewPattern returns an empty, 4/4, unscaled pattern at 120 BPM.
func NewPattern() *Pattern {
	p := &Pattern{Tempo: 120, TimeSigNum: 4, TimeSigDen: 4}
	for i := range p.Tracks {
		p.Tracks[i] = NewTrackPattern()
	}
	return p
}

// ChainTransition names how playback moves to the next chain entry.
type ChainTransition int

const (
	TransitionSequential ChainTransition = iota
	TransitionDirectJump
	TransitionDirectStart
	TransitionTempJump
)

// ChainEntry references one pattern plus how playback arrived there.
type ChainEntry struct {
	PatternIndex int
	Transition   ChainTransition
}

// Chain is an ordered list of up to 64 pattern references.
type Chain struct {
	Entries []ChainEntry
}

// TerminalAction names what a song row does once its repeat count is spent.
type TerminalAction int

const (
	TerminalNone TerminalAction = iota
	TerminalLoop
	TerminalStop
)

// SongRow binds a pattern, a repeat count, and optional per-row overrides of
// length and tempo.
type SongRow struct {
	PatternIndex int
	RepeatCount  int
	RowLength    int     // 0 means use the pattern's own length
	RowTempo     float64 // 0 means use the pattern's own tempo
	Terminal     TerminalAction
}

// Song is an ordered list of up to 99 rows.
type Song struct {
	Rows []SongRow
}
