package controlroom

import "testing"

func TestCaptureMinimizerEcho(t *testing.T) {
	engine := NewEchoEngine(nil)

	captured := engine.Capture("Honestly it wasn't that bad, we managed", 5, 1)
	if len(captured) != 1 {
		t.Fatalf("expected 1 echo, got %d", len(captured))
	}

	echo := captured[0]
	if echo.Category != EchoMinimizer {
		t.Errorf("expected category %s, got %s", EchoMinimizer, echo.Category)
	}
	if echo.Phrase != "it wasn't that bad" {
		t.Errorf("expected verbatim capture, got %q", echo.Phrase)
	}
	if echo.EligibleAfterAct != 2 {
		t.Errorf("expected act gate 2, got %d", echo.EligibleAfterAct)
	}
	if echo.EligibleAfterTurn != 9 {
		t.Errorf("expected turn gate 9, got %d", echo.EligibleAfterTurn)
	}
	if echo.Used {
		t.Error("fresh echo must not be marked used")
	}
}

func TestCaptureMultipleCategories(t *testing.T) {
	engine := NewEchoEngine(nil)

	captured := engine.Capture("I had no choice. It was all my fault.", 2, 1)
	if len(captured) != 2 {
		t.Fatalf("expected 2 echoes, got %d", len(captured))
	}
	if captured[0].Category != EchoInevitability {
		t.Errorf("expected inevitability first, got %s", captured[0].Category)
	}
	if captured[1].Category != EchoSelfBlame {
		t.Errorf("expected self_blame second, got %s", captured[1].Category)
	}
}

func TestEchoEligibilityGates(t *testing.T) {
	engine := NewEchoEngine(nil)
	echoes := engine.Capture("it wasn't that bad", 5, 1)
	if len(echoes) != 1 {
		t.Fatalf("expected 1 echo, got %d", len(echoes))
	}

	// Below both gates: act 1, turns 6 through 8.
	for turn := 6; turn <= 8; turn++ {
		if got := Eligible(echoes, 1, turn); len(got) != 0 {
			t.Errorf("echo must not be eligible at act 1 turn %d", turn)
		}
	}

	// Turn gate opens at 9.
	if got := Eligible(echoes, 1, 9); len(got) != 1 {
		t.Error("echo must be eligible at turn 9")
	}

	// Act gate opens at 2 regardless of turn.
	if got := Eligible(echoes, 2, 6); len(got) != 1 {
		t.Error("echo must be eligible at act 2")
	}
}

func TestEligibleSkipsUsedEchoes(t *testing.T) {
	echoes := []EchoRecord{
		{Phrase: "it was nothing", Category: EchoMinimizer, EligibleAfterAct: 2, EligibleAfterTurn: 9, Used: true},
		{Phrase: "i had no choice", Category: EchoInevitability, EligibleAfterAct: 2, EligibleAfterTurn: 9},
	}

	got := Eligible(echoes, 3, 20)
	if len(got) != 1 {
		t.Fatalf("expected 1 eligible echo, got %d", len(got))
	}
	if got[0].Phrase != "i had no choice" {
		t.Errorf("expected the unused echo, got %q", got[0].Phrase)
	}
}

func TestNextCallbackPicksOldestEligible(t *testing.T) {
	state := NewSessionState()
	state.EchoPhrases = []EchoRecord{
		{Phrase: "early but used", EligibleAfterAct: 1, EligibleAfterTurn: 1, Used: true, Category: EchoMinimizer},
		{Phrase: "oldest eligible", EligibleAfterAct: 2, EligibleAfterTurn: 6, Category: EchoSelfBlame},
		{Phrase: "newer eligible", EligibleAfterAct: 2, EligibleAfterTurn: 7, Category: EchoSelfBlame},
	}

	idx, ok := NextCallback(state, 1, 10)
	if !ok {
		t.Fatal("expected an eligible callback")
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}

	if _, ok := NextCallback(state, 1, 2); ok {
		t.Error("expected no callback below both gates")
	}
}

func TestCaptureAbstainsOnNeutralText(t *testing.T) {
	engine := NewEchoEngine(nil)

	if captured := engine.Capture("We spent the summer fixing the roof.", 1, 1); len(captured) != 0 {
		t.Errorf("expected no echoes, got %v", captured)
	}
}
