// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"math/rand/v2"
	"testing"
)

func TestParseEdgeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    EdgeMode
		wantErr bool
	}{
		{"wrap", EdgeWrap, false},
		{"", EdgeWrap, false},
		{"clamp", EdgeClamp, false},
		{"mirror", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEdgeMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEdgeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEdgeMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRandomGridExtremes(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if n := RandomGrid(10, 10, 0, rng).Population(); n != 0 {
		t.Errorf("p=0 population = %d", n)
	}
	if n := RandomGrid(10, 10, 1, rng).Population(); n != 100 {
		t.Errorf("p=1 population = %d", n)
	}
}

func TestGridNextBlinker(t *testing.T) {
	g := gridOf(5, 5, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})
	want := gridOf(5, 5, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})
	for _, edges := range []EdgeMode{EdgeWrap, EdgeClamp} {
		if got := g.Next(edges); !got.Equal(want) {
			t.Errorf("%s:\ngot\n%swant\n%s", edges, got, want)
		}
	}
}

func TestGridNextEdges(t *testing.T) {
	// A vertical blinker on the left border. Wrapping spreads it to the
	// right border; clamping cuts it off.
	g := gridOf(5, 5, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3})

	wrap := g.Next(EdgeWrap)
	if want := gridOf(5, 5, [2]int{4, 2}, [2]int{0, 2}, [2]int{1, 2}); !wrap.Equal(want) {
		t.Errorf("wrap:\ngot\n%swant\n%s", wrap, want)
	}
	clamp := g.Next(EdgeClamp)
	if want := gridOf(5, 5, [2]int{0, 2}, [2]int{1, 2}); !clamp.Equal(want) {
		t.Errorf("clamp:\ngot\n%swant\n%s", clamp, want)
	}
}

func TestGridCloneIsDeep(t *testing.T) {
	g := gridOf(3, 3, [2]int{1, 1})
	c := g.Clone()
	c.Set(1, 1, false)
	if !g.Alive(1, 1) {
		t.Error("Clone shares pixels with the original")
	}
}

func TestGridString(t *testing.T) {
	g := gridOf(3, 2, [2]int{0, 0}, [2]int{2, 1})
	if got, want := g.String(), "#..\n..#\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
