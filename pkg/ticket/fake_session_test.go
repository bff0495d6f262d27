package ticket

import (
	"fmt"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
)

// fakeSession is an in-memory discord client for lifecycle tests. It is safe
// for concurrent use so tests can exercise simultaneous transitions.
type fakeSession struct {
	mu sync.Mutex

	channels map[string]*discordgo.Channel
	messages map[string][]*discordgo.Message
	perms    map[string]map[string]int64

	deletedChannels []string

	nextChannel int
	nextMessage int

	// failSendOn makes ChannelMessageSendComplex fail for the given channel.
	failSendOn string
}

func newFakeSession() *fakeSession {
	f := &fakeSession{
		channels: make(map[string]*discordgo.Channel),
		messages: make(map[string][]*discordgo.Message),
		perms:    make(map[string]map[string]int64),
	}

	// Pre-seed the destination categories and the log channel.
	for _, id := range []string{"cat-desk", "cat-ia", "cat-hr", "log-chan"} {
		f.channels[id] = &discordgo.Channel{ID: id}
	}
	return f
}

func (f *fakeSession) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	clone := *c
	return &clone, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextChannel++
	c := &discordgo.Channel{
		ID:                   fmt.Sprintf("chan-%d", f.nextChannel),
		GuildID:              guildID,
		Name:                 data.Name,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[c.ID] = c
	return c, nil
}

func (f *fakeSession) ChannelEditComplex(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	if data.Topic != "" {
		c.Topic = data.Topic
	}
	if data.Name != "" {
		c.Name = data.Name
	}
	clone := *c
	return &clone, nil
}

func (f *fakeSession) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	delete(f.channels, channelID)
	f.deletedChannels = append(f.deletedChannels, channelID)
	return c, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSendOn == channelID {
		return nil, fmt.Errorf("send failure injected for %s", channelID)
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}

	f.nextMessage++
	msg := &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextMessage),
		ChannelID: channelID,
		Content:   data.Content,
		Author:    &discordgo.User{ID: "bot-1", Username: "warden"},
		Timestamp: time.Now().UTC(),
	}
	if data.Embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{data.Embed}
	}
	for _, file := range data.Files {
		msg.Attachments = append(msg.Attachments, &discordgo.MessageAttachment{
			Filename: file.Name,
		})
	}
	f.messages[channelID] = append(f.messages[channelID], msg)
	return msg, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, msg := range f.messages[m.Channel] {
		if msg.ID == m.ID {
			if m.Embed != nil {
				msg.Embeds = []*discordgo.MessageEmbed{m.Embed}
			}
			return msg, nil
		}
	}
	return nil, fmt.Errorf("unknown message %s in channel %s", m.ID, m.Channel)
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.messages[channelID]

	// Newest first, like the real API.
	end := len(all)
	if beforeID != "" {
		for i, msg := range all {
			if msg.ID == beforeID {
				end = i
				break
			}
		}
	}

	var page []*discordgo.Message
	for i := end - 1; i >= 0 && len(page) < limit; i-- {
		page = append(page, all[i])
	}
	return page, nil
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.perms[channelID]; !ok {
		f.perms[channelID] = make(map[string]int64)
	}
	f.perms[channelID][targetID] = allow
	return nil
}

func (f *fakeSession) ChannelPermissionDelete(channelID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.perms[channelID], targetID)
	return nil
}

// hasOverwrite reports whether a channel-specific overwrite exists for the target.
func (f *fakeSession) hasOverwrite(channelID, targetID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.perms[channelID][targetID]
	return ok
}

// messageCount returns the number of messages currently in the channel.
func (f *fakeSession) messageCount(channelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.messages[channelID])
}

// lastMessage returns the newest message in the channel.
func (f *fakeSession) lastMessage(channelID string) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.messages[channelID]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// wasDeleted reports whether the channel has been deleted.
func (f *fakeSession) wasDeleted(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.deletedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}
