package shortcut

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Meta":      "mod",
		"OS":        "mod",
		"Control":   "ctrl",
		"ArrowLeft": "left",
		"ArrowDown": "down",
		"Escape":    "esc",
		" ":         "space",
		"A":         "a",
		"F11":       "f11",
		"shift":     "shift",
	}
	for raw, want := range cases {
		if got := Normalize(raw); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseChord(t *testing.T) {
	got := ParseChord("Mod+ArrowLeft")
	if len(got) != 2 || got[0] != "mod" || got[1] != "left" {
		t.Fatalf("ParseChord = %v", got)
	}
	if got := ParseChord("mod+"); len(got) != 1 || got[0] != "mod" {
		t.Fatalf("trailing separator parsed as %v", got)
	}
}

func TestKeyDown_SubsetMatch(t *testing.T) {
	fired := 0
	r := NewRouter(nil)
	r.SetBuiltins([]Shortcut{{
		ID:     "combo",
		Keys:   []string{"ctrl", "shift", "s"},
		Global: true,
		Action: func() error { fired++; return nil },
	}})

	r.KeyDown("Control")
	r.KeyDown("Shift")
	if fired != 0 {
		t.Fatal("partial chord must not fire")
	}
	r.KeyDown("s")
	if fired != 1 {
		t.Fatal("full chord should fire")
	}
}

func TestKeyDown_MostSpecificWins(t *testing.T) {
	var hit string
	r := NewRouter(nil)
	r.SetBuiltins([]Shortcut{
		{ID: "select-all", Keys: []string{"ctrl", "a"}, Global: true, Action: func() error { hit = "select-all"; return nil }},
		{ID: "letter-a", Keys: []string{"a"}, Global: true, Action: func() error { hit = "letter-a"; return nil }},
	})

	r.KeyDown("Control")
	r.KeyDown("a")
	if hit != "select-all" {
		t.Fatalf("hit = %q, want the two-key combo to win", hit)
	}

	r.Blur()
	hit = ""
	r.KeyDown("a")
	if hit != "letter-a" {
		t.Fatalf("hit = %q, want the one-key combo alone", hit)
	}
}

func TestKeyDown_ContextFilter(t *testing.T) {
	ctx := "desktop"
	var hit string
	r := NewRouter(func() string { return ctx })
	r.SetBuiltins([]Shortcut{
		{ID: "desktop-only", Keys: []string{"d"}, Context: "desktop", Action: func() error { hit = "desktop-only"; return nil }},
		{ID: "everywhere", Keys: []string{"g"}, Global: true, Action: func() error { hit = "everywhere"; return nil }},
	})

	r.KeyDown("d")
	if hit != "desktop-only" {
		t.Fatalf("hit = %q in matching context", hit)
	}

	ctx = "editor"
	hit = ""
	r.KeyUp("d")
	r.KeyDown("d")
	if hit != "" {
		t.Fatal("contextual shortcut fired outside its context")
	}
	r.KeyDown("g")
	if hit != "everywhere" {
		t.Fatal("global shortcut should fire in any context")
	}
}

func TestKeyDown_ReturnsPreventDefault(t *testing.T) {
	r := NewRouter(nil)
	r.SetBuiltins([]Shortcut{
		{ID: "quiet", Keys: []string{"q"}, Global: true, Action: func() error { return nil }},
		{ID: "loud", Keys: []string{"l"}, Global: true, PreventDefault: true, Action: func() error { return nil }},
	})

	if r.KeyDown("q") {
		t.Fatal("shortcut without suppression should not prevent default")
	}
	if !r.KeyDown("l") {
		t.Fatal("shortcut with suppression should prevent default")
	}
	if r.KeyDown("x") {
		t.Fatal("unmatched key should not prevent default")
	}
}

func TestKeyUpAndBlur(t *testing.T) {
	r := NewRouter(nil)
	r.KeyDown("Control")
	r.KeyDown("Shift")
	if !r.IsPressed("ctrl") || !r.IsPressed("shift") {
		t.Fatal("keys should be tracked as pressed")
	}

	r.KeyUp("Control")
	if r.IsPressed("ctrl") {
		t.Fatal("key-up should release the key")
	}

	r.Blur()
	if r.IsPressed("shift") || len(r.Pressed()) != 0 {
		t.Fatal("blur should clear the whole pressed set")
	}
}

func TestAction_FailuresAreContained(t *testing.T) {
	r := NewRouter(nil)
	r.SetBuiltins([]Shortcut{
		{ID: "boom", Keys: []string{"b"}, Global: true, Action: func() error { panic("boom") }},
		{ID: "err", Keys: []string{"e"}, Global: true, Action: func() error { return errors.New("nope") }},
	})

	r.KeyDown("b") // must not panic the router
	r.KeyDown("e")
	if !r.IsPressed("b") || !r.IsPressed("e") {
		t.Fatal("pressed tracking should survive failing actions")
	}
}

func TestRegister_Unregister(t *testing.T) {
	fired := 0
	r := NewRouter(nil)
	unreg := r.Register(Shortcut{
		ID:     "extra",
		Keys:   []string{"x"},
		Global: true,
		Action: func() error { fired++; return nil },
	})

	r.KeyDown("x")
	if fired != 1 {
		t.Fatal("registered shortcut should fire")
	}

	r.KeyUp("x")
	unreg()
	unreg() // idempotent
	r.KeyDown("x")
	if fired != 1 {
		t.Fatal("unregistered shortcut must not fire")
	}
}
