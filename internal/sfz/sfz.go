// Package sfz parses the subset of the SFZ instrument format spec.md §6
// names: sample, key, lokey, hikey, pitch_keycenter, lovel, hivel, lorand,
// hirand, seq_length, seq_position, offset, end, loop_start, loop_end,
// loop_mode, loop_crossfade, default_path, note_offset, octave_offset, under
// the <control>/<global>/<master>/<group>/<region> headers with override
// semantics. <curve> is ignored; any other header is a parse error.
//
// Grounded on the region/group/global SFZ data-model shape in
// other_examples/GeoffreyPlitt-gosfzplayer (its JACK I/O is out of scope
// here); the parser itself is a fresh line scanner over bufio, the idiom the
// pack uses for every other line-oriented format.
package sfz

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/nortledge/strata/internal/instrument"
	"github.com/nortledge/strata/internal/sampledata"
)

func sampleIndexFrom(idx int32) sampledata.Index { return sampledata.Index(idx) }

// ParseError reports a malformed opcode or an unsupported header.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("sfz: line %d: %s", e.Line, e.Msg) }

// SampleResolver maps a sample filename opcode value to a store index,
// decoding and loading it if necessary.
type SampleResolver func(path string) (sampleIdx int32, loopStart, loopEnd int, err error)

var knownHeaders = map[string]bool{
	"control": true, "global": true, "master": true, "group": true, "region": true,
}

var knownOpcodes = map[string]bool{
	"sample": true, "key": true, "lokey": true, "hikey": true,
	"pitch_keycenter": true, "lovel": true, "hivel": true,
	"lorand": true, "hirand": true, "seq_length": true, "seq_position": true,
	"offset": true, "end": true, "loop_start": true, "loop_end": true,
	"loop_mode": true, "loop_crossfade": true, "default_path": true,
	"note_offset": true, "octave_offset": true,
}

// scope holds the opcodes set under one header.
type scope struct {
	opcodes map[string]string
}

// Parse reads an SFZ document and returns the resolved instrument regions.
// resolve is called once per distinct `sample=` opcode encountered.
func Parse(r *bufio.Reader, name string, resolve SampleResolver) (*instrument.Instrument, error) {
	var (
		control = map[string]string{}
		stack   []scope // global, master, group — region inherits all of these
		regions []instrument.Region
		line    int
		defaultPath string
	)

	apply := func() map[string]string {
		merged := map[string]string{}
		for _, s := range stack {
			for k, v := range s.opcodes {
				merged[k] = v
			}
		}
		return merged
	}

	// A region's opcodes follow its header, so the region is built when the
	// next header starts or the document ends.
	inRegion := false
	flushRegion := func() error {
		if !inRegion {
			return nil
		}
		inRegion = false
		merged := apply()
		for k, v := range control {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
		region, err := buildRegion(merged, defaultPath, resolve)
		if err != nil {
			return err
		}
		regions = append(regions, *region)
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	var current *scope
	inCurve := false
	for scanner.Scan() {
		line++
		text := stripComment(scanner.Text())
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		for len(text) > 0 {
			if strings.HasPrefix(text, "<") {
				end := strings.Index(text, ">")
				if end < 0 {
					return nil, &ParseError{line, "unterminated header"}
				}
				header := strings.ToLower(strings.TrimSpace(text[1:end]))
				text = strings.TrimSpace(text[end+1:])
				if err := flushRegion(); err != nil {
					return nil, &ParseError{line, err.Error()}
				}
				if header == "curve" {
					current = nil // ignored entirely
					inCurve = true
					continue
				}
				inCurve = false
				if !knownHeaders[header] {
					return nil, &ParseError{line, fmt.Sprintf("unknown header <%s>", header)}
				}
				switch header {
				case "control":
					current = &scope{opcodes: control}
				case "global":
					stack = []scope{{opcodes: map[string]string{}}}
					current = &stack[0]
				case "master":
					stack = append(trimToGlobal(stack), scope{opcodes: map[string]string{}})
					current = &stack[len(stack)-1]
				case "group":
					stack = append(trimToMaster(stack), scope{opcodes: map[string]string{}})
					current = &stack[len(stack)-1]
				case "region":
					stack = append(trimToGroup(stack), scope{opcodes: map[string]string{}})
					current = &stack[len(stack)-1]
					inRegion = true
				}
				continue
			}
			key, val, rest, ok := nextOpcode(text)
			if !ok {
				break
			}
			text = rest
			lk := strings.ToLower(key)
			if inCurve {
				continue
			}
			if !knownOpcodes[lk] {
				continue // opcodes outside the supported subset are ignored
			}
			if lk == "default_path" {
				defaultPath = val
			}
			if current != nil {
				current.opcodes[lk] = val
			}
		}
	}
	if err := flushRegion(); err != nil {
		return nil, &ParseError{line, err.Error()}
	}
	return instrument.NewInstrument(name, regions), nil
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		return s[:i]
	}
	return s
}

// trimToGlobal, trimToMaster and trimToGroup cut the header stack back to
// depth 1, 2 or 3, padding missing levels with empty scopes so global,
// master, group and region always sit at the same depth.
func trimToGlobal(s []scope) []scope { return stackTo(s, 1) }
func trimToMaster(s []scope) []scope { return stackTo(s, 2) }
func trimToGroup(s []scope) []scope  { return stackTo(s, 3) }

func stackTo(s []scope, n int) []scope {
	for len(s) < n {
		s = append(s, scope{opcodes: map[string]string{}})
	}
	return s[:n]
}

// nextOpcode scans one `key=value` pair off the front of text; value runs
// until the next whitespace-preceded `key=` or end of line, allowing paths
// with spaces per the SFZ convention.
func nextOpcode(text string) (key, val, rest string, ok bool) {
	eq := strings.Index(text, "=")
	if eq < 0 {
		return "", "", "", false
	}
	key = strings.TrimSpace(text[:eq])
	remainder := text[eq+1:]
	// find the next token that looks like "word=" preceded by whitespace
	nextEq := -1
	for i := 1; i < len(remainder); i++ {
		if remainder[i] == '=' {
			j := i - 1
			for j >= 0 && remainder[j] != ' ' {
				j--
			}
			if j >= 0 {
				nextEq = j
				break
			}
		}
	}
	if nextEq < 0 {
		val = strings.TrimSpace(remainder)
		rest = ""
	} else {
		val = strings.TrimSpace(remainder[:nextEq])
		rest = strings.TrimSpace(remainder[nextEq:])
	}
	return key, val, rest, true
}

func buildRegion(op map[string]string, defaultPath string, resolve SampleResolver) (*instrument.Region, error) {
	r := instrument.Region{
		LoKey: 0, HiKey: 127, LoVel: 0, HiVel: 127,
		Offset: 0, End: -1, LoopStart: -1, LoopEnd: -1,
	}
	geti := func(k string, def int) int {
		if v, ok := op[k]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	getf := func(k string, def float64) float64 {
		if v, ok := op[k]; ok {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return n
			}
		}
		return def
	}
	if key, ok := op["key"]; ok {
		n := parseNoteOrInt(key)
		r.LoKey, r.HiKey, r.RootNote = n, n, n
	}
	r.LoKey = geti("lokey", r.LoKey)
	r.HiKey = geti("hikey", r.HiKey)
	r.RootNote = geti("pitch_keycenter", r.RootNote)
	r.LoVel = geti("lovel", r.LoVel)
	r.HiVel = geti("hivel", r.HiVel)
	r.LoRand = getf("lorand", 0)
	r.HiRand = getf("hirand", 0)
	r.SeqLength = geti("seq_length", 0)
	r.SeqPosition = geti("seq_position", 1)
	r.Offset = geti("offset", 0)
	r.End = geti("end", -1)
	r.LoopStart = geti("loop_start", -1)
	r.LoopEnd = geti("loop_end", -1)
	r.LoopCrossfade = geti("loop_crossfade", 0)
	r.NoteOffset = geti("note_offset", 0)
	r.OctaveOffset = geti("octave_offset", 0)
	switch op["loop_mode"] {
	case "loop_continuous":
		r.LoopMode = instrument.LoopContinuous
	case "loop_sustain":
		r.LoopMode = instrument.LoopSustain
	case "one_shot":
		r.LoopMode = instrument.LoopOneShot
	default:
		r.LoopMode = instrument.LoopNone
	}

	if sampleName, ok := op["sample"]; ok && resolve != nil {
		path := sampleName
		if defaultPath != "" && !strings.HasPrefix(path, "/") {
			path = defaultPath + path
		}
		idx, ls, le, err := resolve(path)
		if err != nil {
			return nil, err
		}
		r.Sample = sampleIndexFrom(idx)
		if r.LoopStart < 0 {
			r.LoopStart = ls
		}
		if r.LoopEnd < 0 {
			r.LoopEnd = le
		}
	}
	return &r, nil
}

func parseNoteOrInt(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return noteNameToNumber(s)
}

var noteLetters = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// noteNameToNumber parses names like "c4", "c#3", "db5" into a MIDI note
// number (c4 = 60, per common SFZ convention).
func noteNameToNumber(s string) int {
	s = strings.ToLower(s)
	if s == "" {
		return 60
	}
	base, ok := noteLetters[s[0]]
	if !ok {
		return 60
	}
	i := 1
	if i < len(s) && (s[i] == '#') {
		base++
		i++
	} else if i < len(s) && s[i] == 'b' {
		base--
		i++
	}
	octave := 4
	if i < len(s) {
		if n, err := strconv.Atoi(s[i:]); err == nil {
			octave = n
		}
	}
	return (octave+1)*12 + base
}
