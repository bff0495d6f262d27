package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// channelNameDisallowed matches every rune discord does not accept in a channel name.
var channelNameDisallowed = regexp.MustCompile(`[^a-z0-9-_]`)

// Ticket is one open support request. There is exactly one non-deleted ticket
// per ticket channel; closed tickets are deleted, not archived.
type Ticket struct {
	// ID is the time-derived identifier of the ticket, unique per creation instant.
	ID string `json:"id" bson:"id"`

	// Category is the support category the ticket was opened under.
	Category Category `json:"category" bson:"category"`

	// ChannelID is the ID of the channel hosting the ticket.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// OpenerID is the ID of the user that opened the ticket.
	OpenerID string `json:"opener_id" bson:"opener_id"`

	// OpenerName is the display name of the user that opened the ticket.
	OpenerName string `json:"opener_name" bson:"opener_name"`

	// OpenedAt is the time the ticket was opened.
	OpenedAt Datetime `json:"opened_at" bson:"opened_at"`

	// ClaimedBy is the ID of the moderator that claimed the ticket. Empty when unclaimed.
	ClaimedBy string `json:"claimed_by" bson:"claimed_by"`

	// ClaimedByName is the display name of the claimant. Empty when unclaimed.
	ClaimedByName string `json:"claimed_by_name" bson:"claimed_by_name"`

	// AddedMembers is the set of user IDs granted extra visibility on the channel.
	// The opener is never in this set.
	AddedMembers []string `json:"added_members" bson:"added_members"`

	// MessageID is the ID of the status embed message inside the ticket channel.
	MessageID string `json:"message_id" bson:"message_id"`
}

// NewTicket creates a ticket for the given opener with a fresh time-derived ID.
func NewTicket(category Category, channelID, openerID, openerName string, now time.Time) *Ticket {
	return &Ticket{
		ID:         MakeTicketID(now),
		Category:   category,
		ChannelID:  channelID,
		OpenerID:   openerID,
		OpenerName: openerName,
		OpenedAt:   Datetime(now.UTC()),
	}
}

// MakeTicketID derives a ticket ID from the creation instant.
func MakeTicketID(now time.Time) string {
	return now.UTC().Format("20060102150405")
}

// Claimed reports whether the ticket currently has a claimant.
func (t *Ticket) Claimed() bool {
	return t.ClaimedBy != ""
}

// AddMember inserts a user into the added-member set. Adding the opener or an
// already-added member is a no-op.
func (t *Ticket) AddMember(userID string) {
	if userID == t.OpenerID || t.HasMember(userID) {
		return
	}
	t.AddedMembers = append(t.AddedMembers, userID)
}

// RemoveMember removes a user from the added-member set. Removing a user that
// is not in the set is a no-op.
func (t *Ticket) RemoveMember(userID string) {
	for i, id := range t.AddedMembers {
		if id == userID {
			t.AddedMembers = append(t.AddedMembers[:i], t.AddedMembers[i+1:]...)
			return
		}
	}
}

// HasMember reports whether the user is in the added-member set.
func (t *Ticket) HasMember(userID string) bool {
	for _, id := range t.AddedMembers {
		if id == userID {
			return true
		}
	}
	return false
}

// ChannelName derives the channel name for the ticket from its category and opener.
func (t *Ticket) ChannelName() string {
	return SanitizeChannelName(fmt.Sprintf("%s-%s", t.Category, t.OpenerName))
}

// SanitizeChannelName lowercases the name, replaces spaces with '-' and strips
// every rune discord does not accept in a channel name.
func SanitizeChannelName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	return channelNameDisallowed.ReplaceAllString(name, "")
}

// Clone returns a deep copy of the ticket, so store mutators can work on a copy
// without callers observing a partially-updated record.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	clone.AddedMembers = append([]string(nil), t.AddedMembers...)
	return &clone
}
