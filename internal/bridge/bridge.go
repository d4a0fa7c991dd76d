package bridge

import (
	"sync"
	"time"

	"github.com/Thempra/xiaozhi-esp32/internal/display"
	"github.com/Thempra/xiaozhi-esp32/internal/logger"
	"github.com/Thempra/xiaozhi-esp32/internal/protocol"
)

// Broadcaster fans an encoded event out to every connected viewer.
// Delivery is best-effort; implementations must not block on slow peers.
type Broadcaster interface {
	Broadcast(event []byte)
}

// DisplayBridge decorates a display so every mutation also updates the
// StateStore and broadcasts the matching protocol event. The wrapped
// display behaves exactly as without the bridge; mirroring failures are
// contained and never reach the caller.
//
// The bridge mutex serializes update+encode+enqueue, which fixes the order
// of events every viewer observes to the order mutations were applied.
type DisplayBridge struct {
	wrapped display.Display
	store   *StateStore
	caster  Broadcaster
	log     *logger.Logger

	mu sync.Mutex
}

var _ display.Display = (*DisplayBridge)(nil)

// New creates a bridge around wrapped. The store's theme is aligned with
// the wrapped display's current theme. caster may be nil, which disables
// broadcasting but keeps the store mirrored.
func New(wrapped display.Display, store *StateStore, caster Broadcaster) *DisplayBridge {
	if t := wrapped.Theme(); t != nil {
		store.SetTheme(t.Name())
	}
	b := &DisplayBridge{
		wrapped: wrapped,
		store:   store,
		caster:  caster,
		log:     logger.Global().WithPrefix("DisplayBridge"),
	}
	return b
}

// emit hands an encoded event to the broadcaster. Best-effort only.
func (b *DisplayBridge) emit(event []byte) {
	if b.caster == nil {
		return
	}
	b.caster.Broadcast(event)
}

// SetStatus forwards to the wrapped display and mirrors the status text.
func (b *DisplayBridge) SetStatus(status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Debug("SetStatus: %s", status)
	err := b.wrapped.SetStatus(status)
	b.store.SetStatus(status)
	b.emit(protocol.StateUpdate("status", status))
	return err
}

// ShowNotification forwards to the wrapped display and broadcasts the full
// notification payload.
func (b *DisplayBridge) ShowNotification(text string, duration time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.wrapped.ShowNotification(text, duration)
	b.store.SetNotification(text, duration)
	b.emit(protocol.Notification(text, int(duration.Milliseconds())))
	return err
}

// SetEmotion forwards to the wrapped display and mirrors the emotion
// token. Empty tokens mirror as "neutral".
func (b *DisplayBridge) SetEmotion(emotion string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.wrapped.SetEmotion(emotion)
	stored := b.store.SetEmotion(emotion)
	b.emit(protocol.StateUpdate("emotion", stored))
	return err
}

// SetChatMessage forwards to the wrapped display and appends the entry to
// the mirrored transcript.
func (b *DisplayBridge) SetChatMessage(role, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Debug("SetChatMessage: role=%s content_len=%d", role, len(content))
	err := b.wrapped.SetChatMessage(role, content)
	b.store.AppendMessage(role, content)
	b.emit(protocol.ChatMessage(role, content))
	return err
}

// ClearChatMessages forwards to the wrapped display and empties the
// mirrored transcript.
func (b *DisplayBridge) ClearChatMessages() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.wrapped.ClearChatMessages()
	b.store.ClearMessages()
	b.emit(protocol.ClearMessages())
	return err
}

// SetTheme forwards to the wrapped display and mirrors the theme name. A
// nil theme mirrors as "dark".
func (b *DisplayBridge) SetTheme(theme *display.Theme) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.wrapped.SetTheme(theme)
	name := "dark"
	if theme != nil {
		name = theme.Name()
	}
	b.store.SetTheme(name)
	b.emit(protocol.StateUpdate("theme", name))
	return err
}

// Theme returns the wrapped display's active theme.
func (b *DisplayBridge) Theme() *display.Theme {
	return b.wrapped.Theme()
}

// UpdateStatusBar forwards to the wrapped display, refreshes the mirrored
// readouts from the status source and broadcasts them.
func (b *DisplayBridge) UpdateStatusBar(updateAll bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.wrapped.UpdateStatusBar(updateAll)
	level, charging, network, volume := b.store.RefreshStatusBar()
	b.emit(protocol.StatusBar(level, charging, network, volume))
	return err
}

// SetPowerSaveMode is a pure pass-through; nothing is mirrored.
func (b *DisplayBridge) SetPowerSaveMode(on bool) error {
	return b.wrapped.SetPowerSaveMode(on)
}

// SetupUI is a pure pass-through; nothing is mirrored.
func (b *DisplayBridge) SetupUI() error {
	return b.wrapped.SetupUI()
}

// Lock passes through to the wrapped display's render lock.
func (b *DisplayBridge) Lock(timeout time.Duration) bool {
	return b.wrapped.Lock(timeout)
}

// Unlock passes through to the wrapped display's render lock.
func (b *DisplayBridge) Unlock() {
	b.wrapped.Unlock()
}

// FullStateJSON refreshes the status bar readouts and encodes the complete
// snapshot as a full_state event. Used by the REST state endpoint and for
// newly connected sessions.
//
// It deliberately does not take the bridge mutex: the registry calls it
// while holding its own lock, and a mutation blocked on that lock would
// deadlock against it. A mutation racing with the snapshot is at worst
// also delivered as the next ordinary event, which is idempotent.
func (b *DisplayBridge) FullStateJSON() []byte {
	b.store.RefreshStatusBar()
	snap := b.store.Snapshot()
	return protocol.FullState(snap.State)
}
