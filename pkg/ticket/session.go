package ticket

import (
	"github.com/Jacobbrewer1/discordgo"
)

// Session is the slice of the discord client the ticket service uses. It is an
// interface so tests can run the full lifecycle against a fake client.
type Session interface {
	// Channel returns a channel by ID.
	Channel(channelID string) (*discordgo.Channel, error)

	// GuildChannelCreateComplex creates a channel in a guild.
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// ChannelEditComplex edits an existing channel.
	ChannelEditComplex(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error)

	// ChannelDelete deletes a channel.
	ChannelDelete(channelID string) (*discordgo.Channel, error)

	// ChannelMessageSendComplex sends a message to a channel.
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)

	// ChannelMessageEditComplex edits an existing message.
	ChannelMessageEditComplex(m *discordgo.MessageEdit) (*discordgo.Message, error)

	// ChannelMessages returns messages from a channel, newest first.
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error)

	// ChannelPermissionSet creates or updates a permission overwrite on a channel.
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error

	// ChannelPermissionDelete removes a permission overwrite from a channel.
	ChannelPermissionDelete(channelID, targetID string) error
}

// sessionAdapter adapts a concrete discord session to the Session interface.
type sessionAdapter struct {
	s *discordgo.Session
}

// AdaptSession wraps a discord session for use by the ticket service.
func AdaptSession(s *discordgo.Session) Session {
	return &sessionAdapter{s: s}
}

func (a *sessionAdapter) Channel(channelID string) (*discordgo.Channel, error) {
	return a.s.Channel(channelID)
}

func (a *sessionAdapter) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return a.s.GuildChannelCreateComplex(guildID, data)
}

func (a *sessionAdapter) ChannelEditComplex(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	return a.s.ChannelEditComplex(channelID, data)
}

func (a *sessionAdapter) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	return a.s.ChannelDelete(channelID)
}

func (a *sessionAdapter) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendComplex(channelID, data)
}

func (a *sessionAdapter) ChannelMessageEditComplex(m *discordgo.MessageEdit) (*discordgo.Message, error) {
	return a.s.ChannelMessageEditComplex(m)
}

func (a *sessionAdapter) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error) {
	return a.s.ChannelMessages(channelID, limit, beforeID, afterID, aroundID)
}

func (a *sessionAdapter) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return a.s.ChannelPermissionSet(channelID, targetID, targetType, allow, deny)
}

func (a *sessionAdapter) ChannelPermissionDelete(channelID, targetID string) error {
	return a.s.ChannelPermissionDelete(channelID, targetID)
}
