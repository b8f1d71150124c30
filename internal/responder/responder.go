package responder

import (
	"regexp"
	"strings"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// Responder generates canned replies for inbound messages. Pure string
// lookup: no state, safe for concurrent use.
type Responder struct {
	greetings []*regexp.Regexp
}

func New() *Responder {
	return &Responder{
		greetings: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(hi|hello|hey|hola|namaste)\b`),
			regexp.MustCompile(`(?i)\b(good\s+(morning|afternoon|evening))\b`),
			regexp.MustCompile(`(?i)\b(start|begin)\b`),
		},
	}
}

const (
	welcomeReply  = "👋 Welcome to our Health Assistant! I can answer health questions and send you important alerts."
	featuresReply = "✨ Features: auto registration, broadcast alerts, intelligent chat responses, health information delivery."
	healthReply   = "🏥 I can help with health information, vaccination schedules, disease awareness, and preventive care tips!"
	defaultReply  = "Thanks for your message! Try 'features', 'health', or 'help' to see what I can do."
	emptyReply    = "Please send me a message to get started!"

	helpReply = "🤖 I'm your Health Assistant Bot! Here's what you can try:\n\n" +
		"• Type 'features' - Learn about my capabilities\n" +
		"• Type 'health' - Get health information\n" +
		"• Type 'help' - Show this message again"
)

// Reply picks the canned response for a text message. Empty or
// whitespace-only input gets a gentle prompt, never an error.
func (r *Responder) Reply(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return emptyReply
	}
	lower := strings.ToLower(trimmed)

	for _, re := range r.greetings {
		if re.MatchString(lower) {
			return welcomeReply
		}
	}

	if containsAny(lower, "feature", "capability", "what can you") {
		return featuresReply
	}
	if containsAny(lower, "health", "medical", "doctor", "medicine") {
		return healthReply
	}
	if containsAny(lower, "help", "support", "assist") {
		return helpReply
	}

	return defaultReply
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var nonTextAcks = map[model.MessageType]string{
	model.TypeImage:    "Thanks for the image! I currently support text messages. Please send me a text to get health information.",
	model.TypeDocument: "Thanks for the document! I currently support text messages. Please send me a text to get health information.",
	model.TypeAudio:    "Thanks for the audio message! I currently support text messages. Please send me a text to get health information.",
	model.TypeVideo:    "Thanks for the video! I currently support text messages. Please send me a text to get health information.",
	model.TypeSticker:  "Thanks for the sticker! 😊 Please send me a text message to get health information.",
	model.TypeLocation: "Thanks for sharing your location! I currently support text messages. Please send me a text to get health information.",
	model.TypeContacts: "Thanks for the contact! I currently support text messages. Please send me a text to get health information.",
}

// Ack returns the fixed acknowledgement for a non-text message type.
func (r *Responder) Ack(typ model.MessageType) string {
	if reply, ok := nonTextAcks[typ]; ok {
		return reply
	}
	return "Thanks for your message! I currently support text messages. Please send me a text to get started."
}

// FallbackKind selects the apology text for a failed processing step.
type FallbackKind string

const (
	FallbackGeneral    FallbackKind = "general"
	FallbackNetwork    FallbackKind = "network"
	FallbackProcessing FallbackKind = "processing"
)

var fallbacks = map[FallbackKind]string{
	FallbackGeneral:    "Sorry, I'm having trouble right now. Please try again later.",
	FallbackNetwork:    "I'm having connectivity issues. Please try sending your message again.",
	FallbackProcessing: "I couldn't process your message properly. Could you try rephrasing it?",
}

// Fallback returns the apology message for the given failure kind.
func (r *Responder) Fallback(kind FallbackKind) string {
	if msg, ok := fallbacks[kind]; ok {
		return msg
	}
	return fallbacks[FallbackGeneral]
}
