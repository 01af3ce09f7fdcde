package hotkey

import (
	"fmt"
	"strings"
)

// Manager defines the interface for global hotkey management
type Manager interface {
	Register(accel string, callback func(pressed bool)) error
	Unregister(accel string) error
	Close() error
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// Accelerator is a parsed shortcut such as "Ctrl+Alt+R".
type Accelerator struct {
	Mods Modifier
	Key  string // Upper-case letter or digit, or "Space"
}

// Parse reads an accelerator of the form "Mod+Mod+Key". Modifier names are
// case-insensitive; Option is an alias of Alt, Cmd of Super.
func Parse(accel string) (Accelerator, error) {
	parts := strings.Split(accel, "+")
	if len(parts) < 2 {
		return Accelerator{}, fmt.Errorf("hotkey %q needs at least one modifier", accel)
	}

	var a Accelerator
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			a.Mods |= ModCtrl
		case "alt", "option", "opt":
			a.Mods |= ModAlt
		case "shift":
			a.Mods |= ModShift
		case "cmd", "command", "super", "win":
			a.Mods |= ModSuper
		default:
			return Accelerator{}, fmt.Errorf("hotkey %q: unknown modifier %q", accel, p)
		}
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	switch {
	case strings.EqualFold(key, "space"):
		a.Key = "Space"
	case len(key) == 1 && isAlnum(key[0]):
		a.Key = strings.ToUpper(key)
	default:
		return Accelerator{}, fmt.Errorf("hotkey %q: unsupported key %q", accel, key)
	}
	return a, nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// OnPress adapts a press-only handler to a Register callback.
func OnPress(fn func()) func(pressed bool) {
	return func(pressed bool) {
		if pressed {
			fn()
		}
	}
}
