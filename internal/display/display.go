// Package display defines the capability surface of the device display and
// provides the console renderer used when no panel hardware is attached.
package display

import "time"

// Theme is a named display color scheme.
type Theme struct {
	name string
}

// NewTheme creates a theme with the given name.
func NewTheme(name string) *Theme {
	return &Theme{name: name}
}

// Name returns the theme's name.
func (t *Theme) Name() string {
	return t.name
}

// Built-in themes.
var (
	DarkTheme  = NewTheme("dark")
	LightTheme = NewTheme("light")
)

// Display is the mutation surface of the on-device UI. Implementations are
// the concrete renderers and the mirroring decorator that wraps one of them;
// callers cannot tell whether mirroring is active.
type Display interface {
	SetStatus(status string) error
	ShowNotification(text string, duration time.Duration) error
	SetEmotion(emotion string) error
	SetChatMessage(role, content string) error
	ClearChatMessages() error
	SetTheme(theme *Theme) error
	Theme() *Theme
	UpdateStatusBar(updateAll bool) error
	SetPowerSaveMode(on bool) error
	SetupUI() error

	// Lock acquires the render lock, waiting at most timeout (zero waits
	// indefinitely). Unlock releases it.
	Lock(timeout time.Duration) bool
	Unlock()
}
