package display

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Thempra/xiaozhi-esp32/internal/protocol"
)

// Console renders display mutations as lines on a terminal. It stands in
// for the panel driver on hosts without display hardware.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	theme *Theme

	// renderMu backs Lock/Unlock, the raw-drawing lock of the real panel
	// drivers. Separate from mu so locked callers can still mutate.
	renderMu sync.Mutex
}

// NewConsole creates a console renderer writing to out. A nil out writes to
// stdout; a nil theme defaults to dark.
func NewConsole(out io.Writer, theme *Theme) *Console {
	if out == nil {
		out = os.Stdout
	}
	if theme == nil {
		theme = DarkTheme
	}
	return &Console{out: out, theme: theme}
}

func (c *Console) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(c.out, format+"\n", args...)
	return err
}

// SetStatus renders the status line.
func (c *Console) SetStatus(status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printf("[status] %s", status)
}

// ShowNotification renders a transient notification.
func (c *Console) ShowNotification(text string, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printf("[notify] %s (%s)", text, duration)
}

// SetEmotion renders the emotion as its glyph.
func (c *Console) SetEmotion(emotion string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printf("[emotion] %s", protocol.EmotionGlyph(emotion))
}

// SetChatMessage renders one transcript line.
func (c *Console) SetChatMessage(role, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printf("%s> %s", role, content)
}

// ClearChatMessages marks the transcript reset.
func (c *Console) ClearChatMessages() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printf("[chat cleared]")
}

// SetTheme switches the active theme. A nil theme resets to dark.
func (c *Console) SetTheme(theme *Theme) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if theme == nil {
		theme = DarkTheme
	}
	c.theme = theme
	return c.printf("[theme] %s", theme.Name())
}

// Theme returns the active theme.
func (c *Console) Theme() *Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// UpdateStatusBar is a no-op for the console; readouts are rendered by the
// viewer, not the terminal.
func (c *Console) UpdateStatusBar(updateAll bool) error {
	return nil
}

// SetPowerSaveMode is a no-op for the console.
func (c *Console) SetPowerSaveMode(on bool) error {
	return nil
}

// SetupUI is a no-op for the console.
func (c *Console) SetupUI() error {
	return nil
}

// Lock acquires the render lock. The console never times out.
func (c *Console) Lock(timeout time.Duration) bool {
	c.renderMu.Lock()
	return true
}

// Unlock releases the render lock.
func (c *Console) Unlock() {
	c.renderMu.Unlock()
}
