package main

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/cmd/bot/config"
	"github.com/oakrp/warden/pkg/entities"
	"github.com/oakrp/warden/pkg/messages"
	"github.com/oakrp/warden/pkg/ticket"
)

const (
	// PanelCmdName is the command for posting the ticket panel.
	PanelCmdName = "panel"

	// CategorySelectID is the custom ID for the panel's category dropdown.
	CategorySelectID = "ticket_category_select"
)

// panelCmd posts the ticket panel into the current channel.
var panelCmd = &discordgo.ApplicationCommand{
	Name:        PanelCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Posts the ticket panel in this channel.",
}

// panelHandler posts the panel message members open tickets from.
func panelHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if !actor.HasRole(config.ModRoleId) {
		return respondSlashEphemeral(a, i, messages.ErrNoPermission)
	}

	options := make([]discordgo.SelectMenuOption, 0, len(entities.Categories))
	for _, category := range entities.Categories {
		options = append(options, discordgo.SelectMenuOption{
			Label:       string(category),
			Value:       string(category),
			Description: fmt.Sprintf("Open a %s ticket", category),
		})
	}

	if _, err := a.Session().ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title: fmt.Sprintf("%s Support Tickets", ticket.LogoEmoji),
			Description: `Need help from the team? Select a category below to open a ticket.

A private channel will be created for you where staff can assist. Please describe your issue in as much detail as you can once the channel opens.`,
			Color: ticket.EmbedColor,
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    CategorySelectID,
						Placeholder: "Select a category...",
						Options:     options,
					},
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("error sending panel message: %w", err)
	}

	return respondSlashEphemeral(a, i, "Ticket panel posted.")
}

// openTicketHandler creates a ticket from a panel dropdown selection.
func openTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return respondSlashError(a, i)
	}

	category := entities.Category(values[0])
	if !category.Valid() {
		return fmt.Errorf("%w: %s", ticket.ErrCategoryUnresolvable, category)
	}

	tk, err := a.Service().Open(context.Background(), interactionActor(i), category)
	if err != nil {
		return err
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Your ticket has been created: <#%s>", tk.ChannelID))
}
