package midi

import "testing"

func TestDecodeNoteOnOff(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte{0x90, 60, 100, 0x80, 60, 0})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != EventNoteOn || events[0].Note != 60 || events[0].Velocity != 100 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != EventNoteOff || events[1].Note != 60 {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestDecodeNoteOnWithZeroVelocityIsNoteOff(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte{0x91, 64, 0})
	if len(events) != 1 || events[0].Kind != EventNoteOff || events[0].Channel != 1 {
		t.Errorf("expected note-off via zero velocity, got %+v", events)
	}
}

func TestDecodeRunningStatus(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte{0x90, 60, 100, 64, 90})
	if len(events) != 2 {
		t.Fatalf("expected 2 events via running status, got %d", len(events))
	}
	if events[1].Note != 64 || events[1].Velocity != 90 {
		t.Errorf("unexpected running-status event: %+v", events[1])
	}
}

func TestDecodeWaitsForCompleteMessage(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte{0x90, 60})
	if len(events) != 0 {
		t.Fatalf("expected no events for an incomplete message, got %d", len(events))
	}
	events = d.Feed([]byte{100})
	if len(events) != 1 {
		t.Fatalf("expected the message to complete once the velocity byte arrives")
	}
}

func TestDecodePitchBendCentered(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte{0xE0, 0x00, 0x40})
	if len(events) != 1 || events[0].Bend != 0 {
		t.Errorf("expected centered pitch bend, got %+v", events)
	}
}

func TestEncodeNoteOnOff(t *testing.T) {
	on := EncodeNoteOn(0, 60, 100)
	if on[0] != 0x90 || on[1] != 60 || on[2] != 100 {
		t.Errorf("unexpected note-on encoding: %v", on)
	}
	off := EncodeNoteOff(0, 60)
	if off[0] != 0x80 || off[2] != 0 {
		t.Errorf("unexpected note-off encoding: %v", off)
	}
}

func TestRoutingTableResolve(t *testing.T) {
	rt := NewRoutingTable()
	rt.Assign(1, CCModWheel)
	if rt.Resolve(1) != CCModWheel {
		t.Error("expected CC1 to resolve to CCModWheel")
	}
	if rt.Resolve(99) != CCNone {
		t.Error("expected unassigned CC to resolve to CCNone")
	}
}
