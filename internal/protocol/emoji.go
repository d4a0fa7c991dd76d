package protocol

// glyphNeutral is the fallback glyph for empty or unknown emotion tokens.
const glyphNeutral = "😐"

// emotionGlyphs maps the emotion tokens used by the device renderer to the
// Unicode glyphs shown in the web viewer and on glyph-capable displays.
var emotionGlyphs = map[string]string{
	"neutral":              "😐",
	"staticstate":          "😐",
	"happy":                "😊",
	"sleepy":               "😴",
	"sad":                  "😢",
	"angry":                "😠",
	"surprised":            "😮",
	"confused":             "😕",
	"thinking":             "🤔",
	"love":                 "😍",
	"wink":                 "😉",
	"cry":                  "😭",
	"laugh":                "😂",
	"cool":                 "😎",
	"excited":              "🤩",
	"worried":              "😟",
	"scared":               "😨",
	"sick":                 "🤒",
	"dead":                 "😵",
	"robot":                "🤖",
	"alien":                "👽",
	"ghost":                "👻",
	"poop":                 "💩",
	"fire":                 "🔥",
	"heart":                "❤️",
	"star":                 "⭐",
	"check":                "✅",
	"cross":                "❌",
	"question":             "❓",
	"exclamation":          "❗",
	"warning":              "⚠️",
	"triangle_exclamation": "⚠️",
	"microchip_ai":         "🤖",
	"microchip":            "🤖",
	"music":                "🎵",
	"speaker":              "🔊",
	"mute":                 "🔇",
	"battery":              "🔋",
	"wifi":                 "📶",
	"bluetooth":            "🔵",
	"loading":              "⏳",
	"success":              "✅",
	"error":                "❌",
}

// EmotionGlyph resolves an emotion token to a display glyph. Tokens whose
// first byte is outside 7-bit ASCII are assumed to already be an encoded
// glyph and pass through unchanged; anything else unknown falls back to the
// neutral glyph.
func EmotionGlyph(emotion string) string {
	if emotion == "" {
		return glyphNeutral
	}
	if glyph, ok := emotionGlyphs[emotion]; ok {
		return glyph
	}
	if emotion[0] >= 0x80 {
		return emotion
	}
	return glyphNeutral
}
