package sfz

import (
	"bufio"
	"strings"
	"testing"
)

func TestParseBasicRegions(t *testing.T) {
	doc := `
<group> ampeg_release=0.5
<region> sample=kick.wav lokey=36 hikey=36 lovel=0 hivel=127
<region> sample=snare.wav lokey=38 hikey=38 lovel=0 hivel=127
`
	resolved := map[string]int32{"kick.wav": 1, "snare.wav": 2}
	resolve := func(path string) (int32, int, int, error) {
		return resolved[path], -1, -1, nil
	}
	inst, err := Parse(bufio.NewReader(strings.NewReader(doc)), "kit", resolve)
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(inst.Regions))
	}
	if inst.Regions[0].LoKey != 36 || inst.Regions[0].HiKey != 36 {
		t.Errorf("unexpected key range: %+v", inst.Regions[0])
	}
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	doc := `<bogus> sample=x.wav`
	_, err := Parse(bufio.NewReader(strings.NewReader(doc)), "kit", nil)
	if err == nil {
		t.Fatal("expected error for unknown header")
	}
}

func TestParseIgnoresCurveHeader(t *testing.T) {
	doc := `
<curve>
curve_index=0
v000=0
<region> sample=x.wav lokey=60 hikey=60
`
	_, err := Parse(bufio.NewReader(strings.NewReader(doc)), "kit", func(p string) (int32, int, int, error) {
		return 1, -1, -1, nil
	})
	if err != nil {
		t.Fatalf("curve header should be ignored, got error: %v", err)
	}
}

func TestNoteNameToNumber(t *testing.T) {
	cases := map[string]int{"c4": 60, "c#4": 61, "db4": 61, "a4": 69}
	for name, want := range cases {
		if got := noteNameToNumber(name); got != want {
			t.Errorf("noteNameToNumber(%q) = %d, want %d", name, got, want)
		}
	}
}
