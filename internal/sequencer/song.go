package sequencer

// SetChain switches the sequencer into ModeChain, starting at the chain's
// first entry.
func (s *Sequencer) SetChain(chain *Chain, resolve func(patternIndex int) *Pattern) {
	s.chain = chain
	s.mode = ModeChain
	s.chainPos = 0
	if len(chain.Entries) > 0 {
		s.loadPattern(resolve(chain.Entries[0].PatternIndex))
	}
}

// SetSong switches the sequencer into ModeSong, starting at row 0.
func (s *Sequencer) SetSong(song *Song, resolve func(patternIndex int) *Pattern) {
	s.song = song
	s.mode = ModeSong
	s.songRow = 0
	s.songRepeats = 0
	if len(song.Rows) > 0 {
		row := song.Rows[0]
		s.loadPattern(resolve(row.PatternIndex))
		s.applyRowOverrides(row)
	}
}

func (s *Sequencer) loadPattern(p *Pattern) {
	s.pattern = p
	s.clock.SetTempo(p.Tempo)
	s.clock.Reset()
	for i := range s.playheads {
		s.playheads[i] = trackPlayhead{}
	}
}

func (s *Sequencer) applyRowOverrides(row SongRow) {
	if row.RowTempo > 0 {
		s.clock.SetTempo(row.RowTempo)
	}
}

// PatternCompleted is called once every track in the active pattern has
// looped back to its first step; ModeChain/ModeSong advance playback to the
// next entry/row, while ModePattern just notifies via OnEvent.
func (s *Sequencer) PatternCompleted(resolve func(patternIndex int) *Pattern) {
	if s.onEvent != nil {
		s.onEvent(EventPatternLooped)
	}
	switch s.mode {
	case ModeChain:
		s.advanceChain(resolve)
	case ModeSong:
		s.advanceSong(resolve)
	}
}

func (s *Sequencer) advanceChain(resolve func(patternIndex int) *Pattern) {
	if s.chain == nil || len(s.chain.Entries) == 0 {
		return
	}
	entry := s.chain.Entries[s.chainPos]
	switch entry.Transition {
	case TransitionDirectStart:
		s.chainPos = 0
	case TransitionDirectJump, TransitionTempJump:
		// the target entry is the next one in the list; a richer UI would
		// let the performer pick an arbitrary index before this fires.
		s.chainPos = (s.chainPos + 1) % len(s.chain.Entries)
	default: // TransitionSequential
		s.chainPos = (s.chainPos + 1) % len(s.chain.Entries)
	}
	next := s.chain.Entries[s.chainPos]
	s.loadPattern(resolve(next.PatternIndex))
}

func (s *Sequencer) advanceSong(resolve func(patternIndex int) *Pattern) {
	if s.song == nil || len(s.song.Rows) == 0 {
		return
	}
	row := s.song.Rows[s.songRow]
	repeatCount := row.RepeatCount
	if repeatCount <= 0 {
		repeatCount = 1
	}
	s.songRepeats++
	if s.songRepeats < repeatCount {
		return
	}
	s.songRepeats = 0

	if row.Terminal == TerminalStop && s.songRow == len(s.song.Rows)-1 {
		if s.onEvent != nil {
			s.onEvent(EventSongEnded)
		}
		return
	}
	if row.Terminal == TerminalLoop && s.songRow == len(s.song.Rows)-1 {
		s.songRow = 0
	} else {
		s.songRow++
		if s.songRow >= len(s.song.Rows) {
			s.songRow = 0
		}
	}
	next := s.song.Rows[s.songRow]
	s.loadPattern(resolve(next.PatternIndex))
	s.applyRowOverrides(next)
	if s.onEvent != nil {
		s.onEvent(EventSongRowAdvanced)
	}
}
