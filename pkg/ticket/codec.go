package ticket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oakrp/warden/pkg/entities"
)

const (
	// topicMarker prefixes the encoded record inside the channel topic, so a
	// topic can hold human text before it and still be recognised as a ticket.
	topicMarker = "ticket_meta:"

	// maxTopicLen is the discord channel topic limit.
	maxTopicLen = 1024
)

// topicMeta is the wire form of a ticket inside a channel topic. Field names
// are kept short because the whole record has to fit the topic limit.
type topicMeta struct {
	ID         string   `json:"ticket_id"`
	Type       string   `json:"type"`
	OpenerID   string   `json:"opened_by"`
	OpenerName string   `json:"opened_by_name"`
	OpenedAt   string   `json:"opened_at"`
	ClaimedBy  *string  `json:"claimed_by"`
	ClaimName  *string  `json:"claimed_by_name"`
	Added      []string `json:"added"`
	MessageID  string   `json:"ticket_message_id,omitempty"`
}

// EncodeTopic encodes a ticket as a channel topic. It fails with
// ErrMetadataTooLarge rather than silently truncating when the record does not
// fit the topic limit.
func EncodeTopic(t *entities.Ticket) (string, error) {
	meta := topicMeta{
		ID:         t.ID,
		Type:       string(t.Category),
		OpenerID:   t.OpenerID,
		OpenerName: t.OpenerName,
		OpenedAt:   t.OpenedAt.String(),
		Added:      t.AddedMembers,
		MessageID:  t.MessageID,
	}
	if t.Claimed() {
		meta.ClaimedBy = &t.ClaimedBy
		meta.ClaimName = &t.ClaimedByName
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("error encoding ticket metadata: %w", err)
	}

	topic := topicMarker + string(raw)
	if len(topic) > maxTopicLen {
		return "", fmt.Errorf("%w: %d bytes", ErrMetadataTooLarge, len(topic))
	}
	return topic, nil
}

// DecodeTopic decodes a channel topic into a ticket. It returns nil for topics
// that do not carry a marker or carry corrupt metadata; channels that were
// never tickets must read as "no ticket", not as an error.
func DecodeTopic(channelID, topic string) *entities.Ticket {
	idx := strings.Index(topic, topicMarker)
	if idx == -1 {
		return nil
	}

	meta := new(topicMeta)
	if err := json.Unmarshal([]byte(strings.TrimSpace(topic[idx+len(topicMarker):])), meta); err != nil {
		return nil
	}
	if meta.ID == "" {
		return nil
	}

	t := &entities.Ticket{
		ID:           meta.ID,
		Category:     entities.Category(meta.Type),
		ChannelID:    channelID,
		OpenerID:     meta.OpenerID,
		OpenerName:   meta.OpenerName,
		AddedMembers: meta.Added,
		MessageID:    meta.MessageID,
	}
	if meta.ClaimedBy != nil {
		t.ClaimedBy = *meta.ClaimedBy
	}
	if meta.ClaimName != nil {
		t.ClaimedByName = *meta.ClaimName
	}
	// Tolerate a missing or malformed open date; the record is still usable.
	_ = t.OpenedAt.UnmarshalJSON([]byte(fmt.Sprintf("%q", meta.OpenedAt)))

	return t
}
