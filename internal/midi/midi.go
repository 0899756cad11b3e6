// Package midi decodes MIDI 1.0 byte streams into the engine's note/CC event
// type, and encodes outgoing note messages for machine.KindMidiOut tracks
// (spec.md §6). Status-byte layout follows the same 0x80/0x90|channel
// convention used in other_examples/dae981e6_mattdees-guitartutor's SMF
// writer.
package midi

// EventKind identifies the decoded MIDI message type.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventControlChange
	EventProgramChange
	EventPitchBend
	EventAftertouch // channel pressure, or polyphonic key pressure (Note set)
	EventNone
)

// Event is a decoded MIDI 1.0 channel message.
type Event struct {
	Kind       EventKind
	Channel    int // 0-15
	Note       int // 0-127, NoteOn/NoteOff/Aftertouch
	Velocity   int // 0-127, NoteOn/NoteOff
	Controller int // 0-127, ControlChange
	Value      int // 0-127, ControlChange/ProgramChange/Aftertouch
	Bend       int // -8192..8191, PitchBend
}

const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusAftertouch      = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0
)

// Decoder incrementally parses a MIDI 1.0 byte stream, tracking running
// status across calls the way hardware controllers stream it.
type Decoder struct {
	runningStatus byte
	pending       []byte
}

// Feed appends bytes to the decoder and returns every complete event decoded
// so far.
func (d *Decoder) Feed(data []byte) []Event {
	d.pending = append(d.pending, data...)
	var events []Event
	for {
		ev, n, ok := d.decodeOne(d.pending)
		if !ok {
			break
		}
		d.pending = d.pending[n:]
		if ev.Kind != EventNone {
			events = append(events, ev)
		}
	}
	return events
}

func (d *Decoder) decodeOne(buf []byte) (Event, int, bool) {
	if len(buf) == 0 {
		return Event{}, 0, false
	}
	i := 0
	status := buf[0]
	if status&0x80 != 0 {
		d.runningStatus = status
		i = 1
	} else {
		status = d.runningStatus
		if status == 0 {
			return Event{}, 1, true // garbage byte with no running status; drop it
		}
	}

	dataLen := dataBytesFor(status)
	if len(buf)-i < dataLen {
		return Event{}, 0, false // wait for more bytes
	}
	data := buf[i : i+dataLen]
	total := i + dataLen

	ch := int(status & 0x0F)
	switch status & 0xF0 {
	case statusNoteOn:
		if data[1] == 0 {
			return Event{Kind: EventNoteOff, Channel: ch, Note: int(data[0])}, total, true
		}
		return Event{Kind: EventNoteOn, Channel: ch, Note: int(data[0]), Velocity: int(data[1])}, total, true
	case statusNoteOff:
		return Event{Kind: EventNoteOff, Channel: ch, Note: int(data[0]), Velocity: int(data[1])}, total, true
	case statusControlChange:
		return Event{Kind: EventControlChange, Channel: ch, Controller: int(data[0]), Value: int(data[1])}, total, true
	case statusProgramChange:
		return Event{Kind: EventProgramChange, Channel: ch, Value: int(data[0])}, total, true
	case statusAftertouch:
		return Event{Kind: EventAftertouch, Channel: ch, Note: int(data[0]), Value: int(data[1])}, total, true
	case statusChannelPressure:
		return Event{Kind: EventAftertouch, Channel: ch, Value: int(data[0])}, total, true
	case statusPitchBend:
		raw := int(data[0]) | int(data[1])<<7
		return Event{Kind: EventPitchBend, Channel: ch, Bend: raw - 8192}, total, true
	default:
		return Event{Kind: EventNone}, total, true
	}
}

func dataBytesFor(status byte) int {
	switch status & 0xF0 {
	case statusProgramChange, statusChannelPressure:
		return 1
	default:
		return 2
	}
}

// EncodeNoteOn produces a 3-byte note-on message.
func EncodeNoteOn(channel, note, velocity int) []byte {
	return []byte{byte(statusNoteOn | (channel & 0x0F)), byte(note & 0x7F), byte(velocity & 0x7F)}
}

// EncodeNoteOff produces a 3-byte note-off message (velocity 0).
func EncodeNoteOff(channel, note int) []byte {
	return []byte{byte(statusNoteOff | (channel & 0x0F)), byte(note & 0x7F), 0}
}

// EncodeControlChange produces a 3-byte CC message.
func EncodeControlChange(channel, controller, value int) []byte {
	return []byte{byte(statusControlChange | (channel & 0x0F)), byte(controller & 0x7F), byte(value & 0x7F)}
}

// CCDestination identifies the engine parameter a CC number is routed to,
// per spec.md §6's "16 assignable CCs" global setting.
type CCDestination int

const (
	CCNone CCDestination = iota
	CCModWheel
	CCBreath
	CCFilterCutoffA
	CCFilterCutoffB
	CCFilterResonanceA
	CCFilterResonanceB
	CCAmpLevel
	CCPan
	CCSendA
	CCSendB
	CCSendC
	CCTrackMute
)

// RoutingTable maps a track's 16 assignable CC numbers to destinations.
type RoutingTable struct {
	byCC map[int]CCDestination
}

// NewRoutingTable creates an empty table.
func NewRoutingTable() *RoutingTable { return &RoutingTable{byCC: map[int]CCDestination{}} }

// Assign binds a CC number (0-127) to a destination.
func (t *RoutingTable) Assign(cc int, dest CCDestination) { t.byCC[cc] = dest }

// Resolve returns the destination for a CC number, or CCNone if unassigned.
func (t *RoutingTable) Resolve(cc int) CCDestination {
	if d, ok := t.byCC[cc]; ok {
		return d
	}
	return CCNone
}
