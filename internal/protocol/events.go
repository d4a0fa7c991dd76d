// Package protocol builds the JSON events pushed to display viewers.
//
// Every event is a flat object with a "type" discriminator. Payloads are
// assembled by hand so the wire format stays byte-stable regardless of Go
// version or struct field ordering; all user-supplied strings go through
// the escaper first.
package protocol

import (
	"strconv"
	"strings"
)

// Event types understood by the viewer.
const (
	TypeFullState     = "full_state"
	TypeStateUpdate   = "state_update"
	TypeChatMessage   = "chat_message"
	TypeClearMessages = "clear_messages"
	TypeNotification  = "notification"
	TypeStatusBar     = "status_bar"
)

// Message is one chat transcript entry. Immutable once appended.
type Message struct {
	Role    string
	Content string
}

// State is a point-in-time copy of the mirrored display state, shaped the
// way the full_state event carries it.
type State struct {
	Status          string
	Emotion         string
	Theme           string
	BatteryLevel    int
	BatteryCharging bool
	NetworkStatus   string
	Volume          int
	Messages        []Message
}

// StateUpdate encodes a single-field change: {"type":"state_update",...}.
func StateUpdate(field, value string) []byte {
	var b strings.Builder
	b.Grow(48 + len(field) + len(value))
	b.WriteString(`{"type":"state_update","field":"`)
	writeEscaped(&b, field)
	b.WriteString(`","value":"`)
	writeEscaped(&b, value)
	b.WriteString(`"}`)
	return []byte(b.String())
}

// ChatMessage encodes one appended transcript entry.
func ChatMessage(role, content string) []byte {
	var b strings.Builder
	b.Grow(48 + len(role) + len(content))
	b.WriteString(`{"type":"chat_message","role":"`)
	writeEscaped(&b, role)
	b.WriteString(`","content":"`)
	writeEscaped(&b, content)
	b.WriteString(`"}`)
	return []byte(b.String())
}

// ClearMessages encodes the transcript-reset event.
func ClearMessages() []byte {
	return []byte(`{"type":"clear_messages"}`)
}

// Notification encodes a transient notification with its display duration
// in milliseconds.
func Notification(message string, durationMS int) []byte {
	var b strings.Builder
	b.Grow(56 + len(message))
	b.WriteString(`{"type":"notification","message":"`)
	writeEscaped(&b, message)
	b.WriteString(`","duration":`)
	b.WriteString(strconv.Itoa(durationMS))
	b.WriteString(`}`)
	return []byte(b.String())
}

// StatusBar encodes the battery/network/volume readouts. Level and volume
// use -1 for unknown.
func StatusBar(level int, charging bool, network string, volume int) []byte {
	var b strings.Builder
	b.Grow(96 + len(network))
	b.WriteString(`{"type":"status_bar","battery":{"level":`)
	b.WriteString(strconv.Itoa(level))
	b.WriteString(`,"charging":`)
	b.WriteString(strconv.FormatBool(charging))
	b.WriteString(`},"network":"`)
	writeEscaped(&b, network)
	b.WriteString(`","volume":`)
	b.WriteString(strconv.Itoa(volume))
	b.WriteString(`}`)
	return []byte(b.String())
}

// FullState encodes the complete snapshot sent to newly connected viewers
// and returned by the state endpoint.
func FullState(s State) []byte {
	var b strings.Builder
	b.Grow(256)
	b.WriteString(`{"type":"full_state","data":{"status":"`)
	writeEscaped(&b, s.Status)
	b.WriteString(`","emotion":"`)
	writeEscaped(&b, s.Emotion)
	b.WriteString(`","theme":"`)
	writeEscaped(&b, s.Theme)
	b.WriteString(`","battery":{"level":`)
	b.WriteString(strconv.Itoa(s.BatteryLevel))
	b.WriteString(`,"charging":`)
	b.WriteString(strconv.FormatBool(s.BatteryCharging))
	b.WriteString(`},"network":"`)
	writeEscaped(&b, s.NetworkStatus)
	b.WriteString(`","volume":`)
	b.WriteString(strconv.Itoa(s.Volume))
	b.WriteString(`,"messages":[`)
	for i, m := range s.Messages {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"role":"`)
		writeEscaped(&b, m.Role)
		b.WriteString(`","content":"`)
		writeEscaped(&b, m.Content)
		b.WriteString(`"}`)
	}
	b.WriteString(`]}}`)
	return []byte(b.String())
}

// writeEscaped writes s with backslash, double quote and the control
// characters \n \r \t \b \f escaped. All other bytes pass through
// unchanged; there is no general Unicode escaping.
func writeEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteByte(c)
		}
	}
}
