package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/cmd/bot/config"
	"github.com/oakrp/warden/pkg/ticket"
)

const (
	// KickCmdName is the command for kicking a member.
	KickCmdName = "kick"

	// BanCmdName is the command for banning a member.
	BanCmdName = "ban"

	// TimeoutCmdName is the command for timing out a member.
	TimeoutCmdName = "timeout"

	// LockCmdName is the command for locking the current channel.
	LockCmdName = "lock"

	// UnlockCmdName is the command for unlocking the current channel.
	UnlockCmdName = "unlock"

	// PurgeCmdName is the command for bulk deleting messages.
	PurgeCmdName = "purge"

	// SayCmdName is the command for speaking through the bot.
	SayCmdName = "say"

	// PingCmdName is the command for checking the bot's latency.
	PingCmdName = "ping"
)

// purgeLimit is the most messages one purge may delete, matching the bulk
// delete API cap.
const purgeLimit = 100

var (
	kickCmd = &discordgo.ApplicationCommand{
		Name:        KickCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Kicks a member from the server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to kick.",
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the kick.",
			},
		},
	}

	banCmd = &discordgo.ApplicationCommand{
		Name:        BanCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Bans a member from the server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to ban.",
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the ban.",
			},
		},
	}

	timeoutCmd = &discordgo.ApplicationCommand{
		Name:        TimeoutCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Times out a member.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to time out.",
				Required:    true,
			},
			{
				Name:        "minutes",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Description: "The duration of the timeout in minutes.",
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the timeout.",
			},
		},
	}

	lockCmd = &discordgo.ApplicationCommand{
		Name:        LockCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Locks this channel, preventing members from sending messages.",
	}

	unlockCmd = &discordgo.ApplicationCommand{
		Name:        UnlockCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Unlocks this channel.",
	}

	purgeCmd = &discordgo.ApplicationCommand{
		Name:        PurgeCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Bulk deletes recent messages in this channel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "count",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Description: "The number of messages to delete (max 100).",
				Required:    true,
			},
		},
	}

	sayCmd = &discordgo.ApplicationCommand{
		Name:        SayCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Sends a message through the bot.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "message",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The message to send.",
				Required:    true,
			},
		},
	}

	pingCmd = &discordgo.ApplicationCommand{
		Name:        PingCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Checks the bot's latency.",
	}
)

// requireModerator gates a moderation command behind the moderator role.
func requireModerator(actor ticket.Actor) error {
	if !actor.HasRole(config.ModRoleId) {
		return fmt.Errorf("%w: moderation commands require the moderator role", ticket.ErrForbidden)
	}
	return nil
}

// reasonOption reads the optional reason, defaulting for the audit log.
func reasonOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
	if opt, ok := opts["reason"]; ok {
		return opt.StringValue()
	}
	return "No reason provided"
}

func kickHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	opts := commandOptions(i)
	target := opts["user"].UserValue(nil)
	reason := reasonOption(opts)

	if err := a.Session().GuildMemberDeleteWithReason(config.GuildId, target.ID, reason); err != nil {
		return fmt.Errorf("error kicking member: %w", err)
	}

	a.Service().LogAction(context.Background(), "Member Kicked", actor.DisplayName, i.ChannelID,
		fmt.Sprintf("Member: <@%s>\nReason: %s", target.ID, reason), nil)
	return respondSlashEphemeral(a, i, fmt.Sprintf("<@%s> has been kicked.", target.ID))
}

func banHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	opts := commandOptions(i)
	target := opts["user"].UserValue(nil)
	reason := reasonOption(opts)

	if err := a.Session().GuildBanCreateWithReason(config.GuildId, target.ID, reason, 0); err != nil {
		return fmt.Errorf("error banning member: %w", err)
	}

	a.Service().LogAction(context.Background(), "Member Banned", actor.DisplayName, i.ChannelID,
		fmt.Sprintf("Member: <@%s>\nReason: %s", target.ID, reason), nil)
	return respondSlashEphemeral(a, i, fmt.Sprintf("<@%s> has been banned.", target.ID))
}

func timeoutHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	opts := commandOptions(i)
	target := opts["user"].UserValue(nil)
	minutes := opts["minutes"].IntValue()
	reason := reasonOption(opts)

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := a.Session().GuildMemberTimeout(config.GuildId, target.ID, &until); err != nil {
		return fmt.Errorf("error timing out member: %w", err)
	}

	a.Service().LogAction(context.Background(), "Member Timed Out", actor.DisplayName, i.ChannelID,
		fmt.Sprintf("Member: <@%s>\nDuration: %d minutes\nReason: %s", target.ID, minutes, reason), nil)
	return respondSlashEphemeral(a, i, fmt.Sprintf("<@%s> has been timed out for %d minutes.", target.ID, minutes))
}

func lockHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	// Deny @everyone from sending messages; existing allows stay in place.
	if err := a.Session().ChannelPermissionSet(i.ChannelID, config.GuildId, discordgo.PermissionOverwriteTypeRole,
		0, discordgo.PermissionSendMessages); err != nil {
		return fmt.Errorf("error locking channel: %w", err)
	}

	a.Service().LogAction(context.Background(), "Channel Locked", actor.DisplayName, i.ChannelID, "", nil)
	return respondSlashEphemeral(a, i, "Channel locked.")
}

func unlockHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	if err := a.Session().ChannelPermissionSet(i.ChannelID, config.GuildId, discordgo.PermissionOverwriteTypeRole,
		discordgo.PermissionSendMessages, 0); err != nil {
		return fmt.Errorf("error unlocking channel: %w", err)
	}

	a.Service().LogAction(context.Background(), "Channel Unlocked", actor.DisplayName, i.ChannelID, "", nil)
	return respondSlashEphemeral(a, i, "Channel unlocked.")
}

func purgeHandler(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	opts := commandOptions(i)
	count := int(opts["count"].IntValue())
	if count < 1 || count > purgeLimit {
		return respondSlashEphemeral(a, i, fmt.Sprintf("Purge count must be between 1 and %d.", purgeLimit))
	}

	msgs, err := a.Session().ChannelMessages(i.ChannelID, count, "", "", "")
	if err != nil {
		return fmt.Errorf("error fetching messages: %w", err)
	}
	if len(msgs) == 0 {
		return respondSlashEphemeral(a, i, "No messages to purge.")
	}

	// Newest first from the API; reverse for the archive, collect IDs for the
	// bulk delete.
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	for l, r := 0, len(msgs)-1; l < r; l, r = l+1, r-1 {
		msgs[l], msgs[r] = msgs[r], msgs[l]
	}
	transcript := ticket.RenderTranscript(msgs)

	if err := a.Session().ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		return fmt.Errorf("error bulk deleting messages: %w", err)
	}

	a.Service().LogAction(ctx, "Messages Purged", actor.DisplayName, i.ChannelID,
		fmt.Sprintf("Purged %d messages", len(ids)), &discordgo.File{
			Name:        fmt.Sprintf("purged_messages_%s.txt", i.ChannelID),
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcript),
		})
	return respondSlashEphemeral(a, i, fmt.Sprintf("Purged %d messages.", len(ids)))
}

func sayHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := interactionActor(i)
	if err := requireModerator(actor); err != nil {
		return err
	}

	opts := commandOptions(i)
	content := opts["message"].StringValue()

	if _, err := a.Session().ChannelMessageSend(i.ChannelID, content); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}

	a.Service().LogAction(context.Background(), "Say Command Used", actor.DisplayName, i.ChannelID, content, nil)
	return respondSlashEphemeral(a, i, "Message sent.")
}

func pingHandler(a IApp, i *discordgo.InteractionCreate) error {
	latency := a.Session().HeartbeatLatency()
	return respondSlashEphemeral(a, i, fmt.Sprintf("Pong! Gateway latency: %dms", latency.Milliseconds()))
}
