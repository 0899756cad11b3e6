// Command strata is a reference CLI: it loads a project directory, starts
// the audio engine, drives live playback through ebiten's audio backend,
// and prints periodic readback until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nortledge/strata/internal/audiostream"
	"github.com/nortledge/strata/internal/engine"
	"github.com/nortledge/strata/internal/machine"
	"github.com/nortledge/strata/internal/project"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/track"
	"github.com/nortledge/strata/internal/voice"
)

func main() {
	var (
		projectDir  = flag.String("project-dir", ".", "project root directory (holds samples/instruments/presets/projects)")
		projectName = flag.String("project", "", "project name to load; if empty, starts an empty project")
		sampleRate  = flag.Int("sample-rate", 48000, "output sample rate")
		volume      = flag.Float64("volume", 1.0, "master volume scalar")
	)
	flag.Parse()

	store := sampledata.NewStore()
	var proj *project.Project
	if *projectName != "" {
		p, err := project.Load(*projectDir, *projectName, store)
		if err != nil {
			log.Fatalf("load project %q: %v", *projectName, err)
		}
		proj = p
	} else {
		proj = project.New("untitled")
	}
	fmt.Printf("loaded project %q (%d patterns, %d songs)\n", proj.Name, len(proj.Patterns), len(proj.Songs))

	tracks := newEmptyTrackSet(*sampleRate)
	eng := engine.New(tracks, store, *sampleRate)
	eng.Gain.Store(*volume)

	source := audiostream.EngineSource{ProcessFunc: eng.ProcessBlock}
	player, err := audiostream.NewPlayer(*sampleRate, source)
	if err != nil {
		log.Fatalf("start audio player: %v", err)
	}
	player.Play()
	defer player.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			fmt.Println("stopping")
			return
		case <-ticker.C:
			if snap, ok := eng.Readback.Latest(); ok {
				fmt.Printf("step=%d faults=%d\n", snap.Step, eng.NaNGuardFaults())
			}
		}
	}
}

// newEmptyTrackSet builds the fixed 16-track layout with idle machines,
// ready for a project's patterns to drive via command injection.
func newEmptyTrackSet(sampleRate int) [track.Count]*track.Track {
	var tracks [track.Count]*track.Track
	for i := 0; i < track.AudioTrackCount; i++ {
		pool := voice.NewPool(8, float64(sampleRate), 20000)
		m := machine.NewSinglePlayer(pool, sampledata.OffIndex, 60, 0, voice.PlayFwdOneShot, voice.InterpLinear)
		tracks[i] = track.NewAudioTrack(i, sampleRate, m, pool)
	}
	for i := 0; i < track.BusTrackCount; i++ {
		tracks[8+i] = track.NewBusTrack(8+i, sampleRate)
	}
	for i := 0; i < track.SendTrackCount; i++ {
		tracks[12+i] = track.NewSendTrack(12+i, sampleRate)
	}
	tracks[15] = track.NewMixTrack(sampleRate)
	return tracks
}
