package control

import (
	"math"
	"testing"
	"time"
)

// TestDown_StartsDrag verifies pointer down begins a drag gesture.
func TestDown_StartsDrag(t *testing.T) {
	g := NewGestureState()
	actions := g.HandleDown(true, 1, 120, 120, false)
	if len(actions) != 1 || actions[0].Type != ActBegin || actions[0].Rotate {
		t.Fatalf("expected pan begin, got %#v", actions)
	}
}

// TestDown_RotateFlag verifies the roll gesture is selected on request
// and carried through to drags.
func TestDown_RotateFlag(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	actions := g.HandleDown(true, 1, 120, 120, true)
	if len(actions) != 1 || !actions[0].Rotate {
		t.Fatalf("expected rotate begin, got %#v", actions)
	}
	now = now.Add(20 * time.Millisecond)
	actions = g.HandleMove(true, 1, 130, 130)
	if len(actions) != 1 || !actions[0].Rotate {
		t.Fatalf("expected rotate drag, got %#v", actions)
	}
}

// TestMove_OnlyWhenActiveAndSamePointer verifies drag move routing.
func TestMove_OnlyWhenActiveAndSamePointer(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	g.HandleDown(true, 1, 120, 120, false)

	now = now.Add(20 * time.Millisecond)
	actions := g.HandleMove(true, 2, 130, 130)
	if len(actions) != 0 {
		t.Fatalf("expected no actions for different pointer, got %#v", actions)
	}

	actions = g.HandleMove(true, 1, 130, 130)
	if len(actions) != 1 || actions[0].Type != ActDrag {
		t.Fatalf("expected drag, got %#v", actions)
	}
	if actions[0].DX != 10 || actions[0].DY != 10 {
		t.Fatalf("expected delta (10,10), got %#v", actions[0])
	}
}

// TestMove_ThrottleAccumulatesDelta verifies a throttled move is not
// lost: the next emitted drag carries the full distance.
func TestMove_ThrottleAccumulatesDelta(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	g.HandleDown(true, 1, 100, 100, false)

	now = now.Add(5 * time.Millisecond)
	if actions := g.HandleMove(true, 1, 110, 100); len(actions) != 0 {
		t.Fatalf("expected throttled move, got %#v", actions)
	}

	now = now.Add(20 * time.Millisecond)
	actions := g.HandleMove(true, 1, 125, 100)
	if len(actions) != 1 || actions[0].DX != 25 {
		t.Fatalf("expected accumulated delta 25, got %#v", actions)
	}
}

// TestMove_TinyDeltaSuppressed verifies sub-threshold jitter is dropped.
func TestMove_TinyDeltaSuppressed(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	g.HandleDown(true, 1, 100, 100, false)
	now = now.Add(20 * time.Millisecond)
	if actions := g.HandleMove(true, 1, 101, 100.5); len(actions) != 0 {
		t.Fatalf("expected jitter suppressed, got %#v", actions)
	}
}

// TestUp_StopsDrag verifies drag termination.
func TestUp_StopsDrag(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	g.HandleDown(true, 1, 120, 120, false)
	actions := g.HandleUp(true, 1)
	if len(actions) != 1 || actions[0].Type != ActEnd {
		t.Fatalf("expected end, got %#v", actions)
	}

	now = now.Add(20 * time.Millisecond)
	if actions := g.HandleMove(true, 1, 150, 150); len(actions) != 0 {
		t.Fatalf("expected no actions after drag end, got %#v", actions)
	}
}

// TestZoom_RejectsBadFactors verifies non-finite and non-positive zoom
// factors never reach the controller.
func TestZoom_RejectsBadFactors(t *testing.T) {
	g := NewGestureState()
	if actions := g.HandleZoom(true, math.NaN()); len(actions) != 0 {
		t.Fatalf("expected NaN zoom dropped, got %#v", actions)
	}
	if actions := g.HandleZoom(true, -2); len(actions) != 0 {
		t.Fatalf("expected negative zoom dropped, got %#v", actions)
	}
	actions := g.HandleZoom(true, 2.5)
	if len(actions) != 1 || actions[0].Type != ActZoom || actions[0].K != 2.5 {
		t.Fatalf("expected zoom 2.5, got %#v", actions)
	}
}

// TestDoubleClick_ResetsEvenMidDrag verifies reset interrupts a drag.
func TestDoubleClick_ResetsEvenMidDrag(t *testing.T) {
	g := NewGestureState()
	now := time.Unix(0, 0)
	g.SetNowFunc(func() time.Time { return now })

	g.HandleDown(true, 1, 120, 120, false)
	actions := g.HandleDoubleClick(true)
	if len(actions) != 1 || actions[0].Type != ActReset {
		t.Fatalf("expected reset, got %#v", actions)
	}

	now = now.Add(20 * time.Millisecond)
	if actions := g.HandleMove(true, 1, 150, 150); len(actions) != 0 {
		t.Fatalf("expected drag cleared by reset, got %#v", actions)
	}
}

// TestInputDisabled_NoActions verifies the kill switch blocks actions.
func TestInputDisabled_NoActions(t *testing.T) {
	g := NewGestureState()
	if actions := g.HandleDown(false, 1, 120, 120, false); len(actions) != 0 {
		t.Fatalf("expected no actions when input disabled, got %#v", actions)
	}
	if actions := g.HandleZoom(false, 2); len(actions) != 0 {
		t.Fatalf("expected no zoom when input disabled, got %#v", actions)
	}
	if actions := g.HandleDoubleClick(false); len(actions) != 0 {
		t.Fatalf("expected no reset when input disabled, got %#v", actions)
	}
}

// TestDown_RejectsNonFiniteCoords verifies corrupt coordinates are dropped.
func TestDown_RejectsNonFiniteCoords(t *testing.T) {
	g := NewGestureState()
	if actions := g.HandleDown(true, 1, math.Inf(1), 10, false); len(actions) != 0 {
		t.Fatalf("expected non-finite down dropped, got %#v", actions)
	}
}
