package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/entities"
)

const (
	// LogoEmoji prepends every embed title the bot posts.
	LogoEmoji = "\U0001F39F"

	// EmbedColor is the colour used for every embed the bot posts.
	EmbedColor = 0x313D61
)

const (
	// ClaimButtonID is the custom ID for the claim button.
	ClaimButtonID = "ticket_claim_button"

	// UnclaimButtonID is the custom ID for the unclaim button.
	UnclaimButtonID = "ticket_unclaim_button"

	// CloseButtonID is the custom ID for the close button.
	CloseButtonID = "ticket_close_button"
)

// StatusEmbed projects a ticket record into its status embed. The field order
// is fixed; the embed always mirrors the stored record, there is no read path
// that recomputes it from channel history.
func StatusEmbed(t *entities.Ticket) *discordgo.MessageEmbed {
	claimed := "None"
	if t.Claimed() {
		claimed = fmt.Sprintf("<@%s>", t.ClaimedBy)
	}

	added := "None"
	if len(t.AddedMembers) > 0 {
		mentions := make([]string, 0, len(t.AddedMembers))
		for _, id := range t.AddedMembers {
			mentions = append(mentions, fmt.Sprintf("<@%s>", id))
		}
		added = strings.Join(mentions, ", ")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s Ticket", LogoEmoji, t.Category),
		Description: fmt.Sprintf("Ticket opened by <@%s>\nClaimed by: %s", t.OpenerID, claimed),
		Color:       EmbedColor,
		Timestamp:   time.Time(t.OpenedAt).UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Claimed by",
				Value:  claimed,
				Inline: false,
			},
			{
				Name:   "People added",
				Value:  added,
				Inline: false,
			},
			{
				Name:   "Open date",
				Value:  t.OpenedAt.Display(),
				Inline: true,
			},
			{
				Name:   "Ticket ID",
				Value:  t.ID,
				Inline: true,
			},
		},
	}
}

// StatusComponents builds the button row under the status embed. The claim
// button is disabled while the ticket is claimed, the unclaim button while it
// is not.
func StatusComponents(claimed bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Claim",
					Style:    discordgo.SuccessButton,
					Disabled: claimed,
					CustomID: ClaimButtonID,
				},
				discordgo.Button{
					Label:    "Unclaim",
					Style:    discordgo.SecondaryButton,
					Disabled: !claimed,
					CustomID: UnclaimButtonID,
				},
				discordgo.Button{
					Label:    "Close",
					Style:    discordgo.DangerButton,
					Disabled: false,
					CustomID: CloseButtonID,
				},
			},
		},
	}
}

// logEmbed builds the consistent embed shape posted to the log sink.
func logEmbed(action, who, channelID, details string) *discordgo.MessageEmbed {
	channel := "-"
	if channelID != "" {
		channel = fmt.Sprintf("<#%s>", channelID)
	}

	e := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", LogoEmoji, action),
		Description: fmt.Sprintf("User: %s\nChannel: %s", who, channel),
		Color:       EmbedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Ticket System",
		},
	}
	if details != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Details",
			Value:  details,
			Inline: false,
		})
	}
	return e
}

// confirmEmbed builds the short confirmation embed posted inside the ticket
// channel after a transition.
func confirmEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", LogoEmoji, title),
		Description: description,
		Color:       EmbedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}
