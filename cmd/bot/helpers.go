package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/messages"
	"github.com/oakrp/warden/pkg/ticket"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// followupNotice sends a followup on an already-answered interaction.
func followupNotice(a IApp, i *discordgo.InteractionCreate, content string) error {
	_, err := a.Session().FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}

// interactionActor extracts the invoking guild member as a lifecycle actor.
func interactionActor(i *discordgo.InteractionCreate) ticket.Actor {
	actor := ticket.Actor{}
	if i.Member == nil {
		return actor
	}

	if i.Member.User != nil {
		actor.ID = i.Member.User.ID
		actor.DisplayName = i.Member.User.Username
	}
	if i.Member.Nick != "" {
		actor.DisplayName = i.Member.Nick
	}
	actor.Roles = i.Member.Roles
	return actor
}

// commandOptions maps a slash command's options by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
