package render

import (
	"os"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// testGame runs the package tests inside the ebiten game loop so that
// pixel-reading APIs (ReadPixels, At) are usable from test bodies.
type testGame struct {
	m    *testing.M
	code int
}

func (g *testGame) Update() error {
	g.code = g.m.Run()
	return ebiten.Termination
}

func (g *testGame) Draw(*ebiten.Image) {}

func (g *testGame) Layout(w, h int) (int, int) { return 320, 240 }

func TestMain(m *testing.M) {
	g := &testGame{m: m}
	if err := ebiten.RunGame(g); err != nil {
		// No graphics context available; run the tests directly and
		// let graphics-dependent ones skip or fail on their own.
		os.Exit(m.Run())
	}
	os.Exit(g.code)
}
