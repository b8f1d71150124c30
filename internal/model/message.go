package model

import "strings"

type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeDocument MessageType = "document"
	TypeAudio    MessageType = "audio"
	TypeVideo    MessageType = "video"
	TypeSticker  MessageType = "sticker"
	TypeLocation MessageType = "location"
	TypeContacts MessageType = "contacts"
	TypeUnknown  MessageType = "unknown"
)

func (t MessageType) String() string { return string(t) }

// ParseMessageType classifies a raw webhook type tag. Unrecognized
// values bucket into unknown; the raw tag is preserved separately on
// ExtractedMessage for logging.
func ParseMessageType(s string) MessageType {
	switch MessageType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeText, TypeImage, TypeDocument, TypeAudio, TypeVideo, TypeSticker, TypeLocation, TypeContacts:
		return MessageType(strings.ToLower(strings.TrimSpace(s)))
	default:
		return TypeUnknown
	}
}

// ExtractedMessage is the canonical record produced by the extractor.
// From holds the canonical phone number ("+" and 7-15 digits). Text is
// non-nil only for type=text; an empty body extracts as "", never nil.
type ExtractedMessage struct {
	ID      string
	From    string
	Type    MessageType
	RawType string
	Text    *string
}

// TextBody returns the text payload or "" when absent.
func (m ExtractedMessage) TextBody() string {
	if m.Text == nil {
		return ""
	}
	return *m.Text
}
