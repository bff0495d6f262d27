package main

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/messages"
	"github.com/oakrp/warden/pkg/ticket"
)

const (
	// AddCmdName is the command for adding a member to a ticket.
	AddCmdName = "add"

	// RemoveCmdName is the command for removing a member from a ticket.
	RemoveCmdName = "remove"
)

var (
	// addCmd grants a member visibility on the current ticket.
	addCmd = &discordgo.ApplicationCommand{
		Name:        AddCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Adds a member to this ticket.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to add to the ticket.",
				Required:    true,
			},
		},
	}

	// removeCmd revokes a member's visibility on the current ticket.
	removeCmd = &discordgo.ApplicationCommand{
		Name:        RemoveCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Removes a member from this ticket.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to remove from the ticket.",
				Required:    true,
			},
		},
	}
)

// claimTicketHandler assigns the ticket to the pressing moderator.
func claimTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if _, err := a.Service().Claim(context.Background(), actor, i.ChannelID); err != nil {
		return err
	}
	return respondSlashEphemeral(a, i, "You have claimed this ticket.")
}

// unclaimTicketHandler releases the presser's claim on the ticket.
func unclaimTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if _, err := a.Service().Unclaim(context.Background(), actor, i.ChannelID); err != nil {
		return err
	}
	return respondSlashEphemeral(a, i, "You have released your claim on this ticket.")
}

// closeTicketHandler archives the ticket and deletes its channel. The
// interaction is answered before the channel disappears underneath it.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actor := interactionActor(i)

	if err := respondSlashEphemeral(a, i, "Closing ticket. This channel will be removed shortly."); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	if err := a.Service().Close(ctx, actor, i.ChannelID); err != nil {
		if ticket.IsUserError(err) {
			return followupNotice(a, i, ticket.UserMessage(err))
		}
		a.Service().LogFailure(ctx, err)
		return followupNotice(a, i, messages.ErrUserErrorProcessing)
	}
	return nil
}

// addMemberHandler handles the add command.
func addMemberHandler(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	target := opts["user"].UserValue(nil)

	actor := interactionActor(i)
	if _, err := a.Service().AddMember(context.Background(), actor, i.ChannelID, target.ID); err != nil {
		return err
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("<@%s> has been added to this ticket.", target.ID))
}

// removeMemberHandler handles the remove command.
func removeMemberHandler(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	target := opts["user"].UserValue(nil)

	actor := interactionActor(i)
	if _, err := a.Service().RemoveMember(context.Background(), actor, i.ChannelID, target.ID); err != nil {
		return err
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("<@%s> has been removed from this ticket.", target.ID))
}
