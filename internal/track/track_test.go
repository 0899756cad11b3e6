package track

import (
	"testing"

	"github.com/nortledge/strata/internal/effects"
	"github.com/nortledge/strata/internal/machine"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/voice"
)

func TestNewAudioTrackHasTwoInsertSlots(t *testing.T) {
	pool := voice.NewPool(4, 48000, 20000)
	m := machine.NewSinglePlayer(pool, 0, 60, 0, voice.PlayFwdOneShot, voice.InterpLinear)
	tr := NewAudioTrack(0, 48000, m, pool)
	if tr.Insert1.Tag != effects.TagBypass || tr.Insert2.Tag != effects.TagBypass {
		t.Fatal("expected both insert slots to default to bypass")
	}
}

func TestBusTrackCannotRouteToAnotherBus(t *testing.T) {
	bus := NewBusTrack(8, 48000)
	if err := bus.SetRoute(RouteBus2); err == nil {
		t.Fatal("expected an error routing a bus track to another bus")
	}
	if err := bus.SetRoute(RouteOutCD); err != nil {
		t.Fatalf("expected bus->OutC/D to be valid, got %v", err)
	}
}

func TestMixTrackHasNoOnwardRoute(t *testing.T) {
	mix := NewMixTrack(48000)
	if err := mix.ValidateRoute(RouteBus1); err == nil {
		t.Fatal("expected the mix track to reject any onward route")
	}
}

func TestSendTrackHasOnlyOneInsertSlot(t *testing.T) {
	send := NewSendTrack(12, 48000)
	send.SetInsert2(effects.TagChorus)
	if send.Insert2.Tag != effects.TagBypass {
		t.Fatal("expected SetInsert2 to no-op on a send track")
	}
}

func TestMutedTrackProducesSilence(t *testing.T) {
	pool := voice.NewPool(4, 48000, 20000)
	m := machine.NewSinglePlayer(pool, 0, 60, 0, voice.PlayFwdOneShot, voice.InterpLinear)
	tr := NewAudioTrack(0, 48000, m, pool)
	tr.Mute = true
	store := sampledata.NewStore()
	l, r := tr.Process(store, 1, 1)
	if l != 0 || r != 0 {
		t.Errorf("expected silence from muted track, got l=%f r=%f", l, r)
	}
}

func TestPanAttenuatesOppositeChannel(t *testing.T) {
	tr := NewBusTrack(8, 48000)
	l, r := tr.Process(nil, 1, 1)
	if l != 1 || r != 1 {
		t.Fatalf("expected unity at pan=0, got l=%f r=%f", l, r)
	}
	tr.Pan = -1
	l, r = tr.Process(nil, 1, 1)
	if r != 0 {
		t.Errorf("expected right channel silenced at pan=-1, got r=%f", r)
	}
	if l != 1 {
		t.Errorf("expected left channel unattenuated at pan=-1, got l=%f", l)
	}
}
