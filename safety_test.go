package controlroom

import "testing"

func TestSafetyDetectSelfHarm(t *testing.T) {
	engine := NewSafetyEngine()

	sig := engine.Detect("Some days I just want to kill myself", 4)
	if sig == nil {
		t.Fatal("expected self-harm check to fire")
	}
	if sig.Type != SafetyImminentSelfHarm {
		t.Errorf("expected %s, got %s", SafetyImminentSelfHarm, sig.Type)
	}
	if sig.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %f", sig.Confidence)
	}
	if sig.TurnIndex != 4 {
		t.Errorf("expected turn index 4, got %d", sig.TurnIndex)
	}
}

func TestSafetyDetectHarmToOthers(t *testing.T) {
	engine := NewSafetyEngine()

	sig := engine.Detect("I'm going to hurt him if he comes back", 0)
	if sig == nil {
		t.Fatal("expected harm-to-others check to fire")
	}
	if sig.Type != SafetyImminentHarmOther {
		t.Errorf("expected %s, got %s", SafetyImminentHarmOther, sig.Type)
	}
}

func TestSafetySelfHarmCheckedFirst(t *testing.T) {
	engine := NewSafetyEngine()

	// Both checks could fire; self-harm has priority.
	sig := engine.Detect("I want to kill myself and I'm going to hurt him too", 0)
	if sig == nil {
		t.Fatal("expected a safety signal")
	}
	if sig.Type != SafetyImminentSelfHarm {
		t.Errorf("expected self-harm priority, got %s", sig.Type)
	}
}

func TestSafetyAbstainsOnOrdinaryDistress(t *testing.T) {
	engine := NewSafetyEngine()

	if sig := engine.Detect("That year nearly broke me, it was the worst time of my life", 0); sig != nil {
		t.Errorf("expected no signal, got %s", sig.Type)
	}
}

func TestSafetyResponsesAreFixedAndNonEmpty(t *testing.T) {
	engine := NewSafetyEngine()

	for _, typ := range []SafetyType{SafetyImminentSelfHarm, SafetyImminentHarmOther, SafetyChildExploitation} {
		if engine.Response(typ) == "" {
			t.Errorf("expected grounding copy for %s", typ)
		}
		if engine.Response(typ) != engine.Response(typ) {
			t.Errorf("grounding copy for %s is not stable", typ)
		}
	}
}
