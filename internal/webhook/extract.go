package webhook

import (
	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/util"
)

// Extract normalizes a validated webhook message into the canonical
// record the dispatcher works with. The sender number is canonicalized
// to "+<digits>"; a text message always yields a non-nil Text, "" when
// the body is structurally absent. Unrecognized type tags are kept
// verbatim in RawType but classify as unknown.
func Extract(msg model.Message) (model.ExtractedMessage, error) {
	if msg.ID == "" {
		return model.ExtractedMessage{}, invalid(LevelMessage, "id", "is missing")
	}
	if msg.From == "" {
		return model.ExtractedMessage{}, invalid(LevelMessage, "from", "is missing")
	}

	from, err := util.CanonicalPhone(msg.From)
	if err != nil {
		return model.ExtractedMessage{}, invalid(LevelMessage, "from", err.Error())
	}

	rawType := msg.Type
	if rawType == "" {
		rawType = model.TypeUnknown.String()
	}

	extracted := model.ExtractedMessage{
		ID:      msg.ID,
		From:    from,
		Type:    model.ParseMessageType(msg.Type),
		RawType: rawType,
	}

	if extracted.Type == model.TypeText {
		body := ""
		if msg.Text != nil {
			body = msg.Text.Body
		}
		extracted.Text = &body
	}

	return extracted, nil
}
