package shortcut

import "strings"

// Normalize canonicalizes a raw key name so the same shortcut definition
// matches input from any source: the platform modifier collapses to "mod",
// arrow keys lose their prefix, and everything is lowercased.
func Normalize(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "meta", "os", "super", "cmd", "win":
		return "mod"
	case "control":
		return "ctrl"
	case "escape":
		return "esc"
	case " ", "spacebar":
		return "space"
	case "arrowleft":
		return "left"
	case "arrowright":
		return "right"
	case "arrowup":
		return "up"
	case "arrowdown":
		return "down"
	}
	return k
}

// ParseChord splits a "+"-separated combo string into normalized keys.
// Empty segments are dropped, so "mod+" and "mod" are the same chord.
func ParseChord(chord string) []string {
	parts := strings.Split(chord, "+")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := Normalize(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
