// Package bridge mirrors on-device display mutations into an authoritative
// state store and broadcasts them to connected web viewers.
package bridge

import (
	"sync"
	"time"

	"github.com/Thempra/xiaozhi-esp32/internal/protocol"
)

// MaxMessages bounds the mirrored chat transcript. Appending beyond the
// bound evicts the oldest entry first.
const MaxMessages = 40

// StatusSource supplies the status bar readouts. Implementations return -1
// for unknown battery level or volume and "unknown" for the network status.
type StatusSource interface {
	BatteryStatus() (level int, charging bool)
	NetworkStatus() string
	Volume() int
}

// Snapshot is an immutable point-in-time copy of the mirrored state, safe
// to encode without holding the store lock.
type Snapshot struct {
	protocol.State
	Notification         string
	NotificationExpireAt time.Time
}

// StateStore holds the authoritative mirrored display state. All access is
// serialized by one mutex held only for the in-memory update, never across
// I/O.
type StateStore struct {
	mu     sync.Mutex
	source StatusSource

	status          string
	emotion         string
	theme           string
	batteryLevel    int
	batteryCharging bool
	networkStatus   string
	volume          int
	messages        []protocol.Message

	notification         string
	notificationExpireAt time.Time
}

// NewStateStore creates a store with the startup defaults. A nil source
// leaves the status bar readouts at their unknown sentinels.
func NewStateStore(source StatusSource) *StateStore {
	return &StateStore{
		source:        source,
		status:        "Idle",
		emotion:       "neutral",
		theme:         "dark",
		batteryLevel:  -1,
		networkStatus: "unknown",
		volume:        -1,
	}
}

// SetStatus replaces the status text.
func (s *StateStore) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// SetEmotion replaces the emotion token and returns the stored value. An
// empty token normalizes to "neutral".
func (s *StateStore) SetEmotion(emotion string) string {
	if emotion == "" {
		emotion = "neutral"
	}
	s.mu.Lock()
	s.emotion = emotion
	s.mu.Unlock()
	return emotion
}

// SetTheme replaces the theme name.
func (s *StateStore) SetTheme(name string) {
	s.mu.Lock()
	s.theme = name
	s.mu.Unlock()
}

// AppendMessage appends a chat entry, evicting the oldest entries while the
// transcript exceeds MaxMessages.
func (s *StateStore) AppendMessage(role, content string) {
	s.mu.Lock()
	s.messages = append(s.messages, protocol.Message{Role: role, Content: content})
	if n := len(s.messages) - MaxMessages; n > 0 {
		s.messages = append(s.messages[:0], s.messages[n:]...)
	}
	s.mu.Unlock()
}

// ClearMessages empties the transcript.
func (s *StateStore) ClearMessages() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// SetNotification records the active notification and its expiry.
func (s *StateStore) SetNotification(text string, duration time.Duration) {
	expireAt := time.Now().Add(duration)
	s.mu.Lock()
	s.notification = text
	s.notificationExpireAt = expireAt
	s.mu.Unlock()
}

// RefreshStatusBar re-reads the status bar fields from the source and
// returns the new readouts. The source is consulted before the lock is
// taken so slow probes never block other state access.
func (s *StateStore) RefreshStatusBar() (level int, charging bool, network string, volume int) {
	level, volume = -1, -1
	network = "unknown"
	if s.source != nil {
		level, charging = s.source.BatteryStatus()
		network = s.source.NetworkStatus()
		volume = s.source.Volume()
	}
	s.mu.Lock()
	s.batteryLevel = level
	s.batteryCharging = charging
	s.networkStatus = network
	s.volume = volume
	s.mu.Unlock()
	return level, charging, network, volume
}

// Snapshot copies the current state under lock.
func (s *StateStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State: protocol.State{
			Status:          s.status,
			Emotion:         s.emotion,
			Theme:           s.theme,
			BatteryLevel:    s.batteryLevel,
			BatteryCharging: s.batteryCharging,
			NetworkStatus:   s.networkStatus,
			Volume:          s.volume,
		},
		Notification:         s.notification,
		NotificationExpireAt: s.notificationExpireAt,
	}
	if len(s.messages) > 0 {
		snap.Messages = make([]protocol.Message, len(s.messages))
		copy(snap.Messages, s.messages)
	}
	return snap
}
