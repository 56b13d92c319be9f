package game

import (
	"testing"

	"github.com/petridish/menagerie/pkg/anim"
	"github.com/petridish/menagerie/pkg/creature"
	"github.com/petridish/menagerie/pkg/lod"
	"github.com/petridish/menagerie/pkg/render"
	"github.com/petridish/menagerie/pkg/sprites"
)

// TestSettingsDegradedMode checks a nil storage backend leaves the
// defaults usable, load is a no-op, and save does not fail.
func TestSettingsDegradedMode(t *testing.T) {
	sm := NewSettingsManager(nil)
	s := sm.Settings()
	if s.ChromaTolerance != render.DefaultTolerance {
		t.Errorf("default tolerance = %v", s.ChromaTolerance)
	}
	if s.MaxVideoSprites != sprites.DefaultMaxVideoSprites {
		t.Errorf("default pool bound = %v", s.MaxVideoSprites)
	}
	if err := sm.Save(); err != nil {
		t.Errorf("degraded save errored: %v", err)
	}

	s.ChromaTolerance = 80
	if sm.Settings().ChromaTolerance != 80 {
		t.Error("settings pointer should be live")
	}
}

// TestSessionWiring checks the session builds every manager and
// pushes settings into them.
func TestSessionWiring(t *testing.T) {
	sess := NewSession(nil, nil)
	if sess.Sprites == nil || sess.Videos == nil || sess.Chroma == nil ||
		sess.Deformer == nil || sess.Effects == nil {
		t.Fatal("session left a manager nil")
	}
	if got := sess.Chroma.Tolerance(); got != render.DefaultTolerance {
		t.Errorf("chroma tolerance = %v", got)
	}

	sess.SetChromaTolerance(70)
	if got := sess.Chroma.Tolerance(); got != 70 {
		t.Errorf("tolerance after set = %v", got)
	}
}

// TestSessionReset checks per-level state is dropped while settings
// survive.
func TestSessionReset(t *testing.T) {
	sess := NewSession(nil, nil)
	sess.SetChromaTolerance(75)
	sess.Videos.Acquire("A", nil)
	sess.Effects.SpawnBite(0, 0, 0)

	sess.Reset()
	if sess.Videos.Len() != 0 || sess.Effects.Len() != 0 {
		t.Error("reset left per-level state")
	}
	if sess.Settings.Settings().ChromaTolerance != 75 {
		t.Error("reset should not touch settings")
	}
}

// TestCreatureViewEventFlow drives the view's state machine and
// checks the chomp envelope and action surface.
func TestCreatureViewEventFlow(t *testing.T) {
	sess := NewSession(nil, nil)
	rec := &creature.Record{
		ID:        "gulper",
		SpriteURL: "gulper.png",
		Actions:   []string{"idle", "swim", "bite"},
	}
	cv := NewCreatureView(sess, "gulper", rec, false)

	if cv.CurrentAction() != anim.ActionIdle {
		t.Fatalf("initial action = %q", cv.CurrentAction())
	}

	if _, ok := cv.ProcessEvent(anim.Bite()); !ok {
		t.Fatal("bite event should transition")
	}
	if cv.chompPhase != 1 {
		t.Errorf("chomp phase = %v after bite, want 1", cv.chompPhase)
	}

	// The envelope drains back to zero over a few frames.
	for i := 0; i < 60; i++ {
		cv.Update(1.0/60, 10, lod.ContextGame)
	}
	if cv.chompPhase != 0 {
		t.Errorf("chomp phase = %v after a second, want 0", cv.chompPhase)
	}
	// The bite is timed out by the view itself and the machine falls
	// back to the idle speed band.
	if cv.CurrentAction() != anim.ActionIdle {
		t.Errorf("action = %q after bite played out, want idle", cv.CurrentAction())
	}
}

// TestCreatureViewNilRecord checks a record-less view is inert but
// safe.
func TestCreatureViewNilRecord(t *testing.T) {
	sess := NewSession(nil, nil)
	cv := NewCreatureView(sess, "ghost", nil, false)
	cv.Update(0.016, 100, lod.ContextGame)
	if cv.CurrentAction() != anim.ActionIdle {
		t.Errorf("nil-record default action = %q", cv.CurrentAction())
	}
}
