package ticket

import (
	"context"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/entities"
)

// closedTopic replaces the metadata blob when a record is deleted. The channel
// itself is normally deleted right after, but a plain topic keeps a crashed
// close from resurrecting the ticket.
const closedTopic = "ticket closed"

// ChannelTopicClient is the slice of the discord client the topic store needs.
type ChannelTopicClient interface {
	Channel(channelID string) (*discordgo.Channel, error)
	ChannelEditComplex(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error)
}

// TopicStore persists ticket records inside the topic of the ticket channel
// itself. Self-contained, no extra infrastructure, capped by the topic length.
type TopicStore struct {
	client ChannelTopicClient
	locks  *keyedMutex
}

// NewTopicStore creates a store backed by channel topics.
func NewTopicStore(client ChannelTopicClient) *TopicStore {
	return &TopicStore{
		client: client,
		locks:  newKeyedMutex(),
	}
}

func (s *TopicStore) Create(ctx context.Context, t *entities.Ticket) error {
	unlock := s.locks.Lock(t.ChannelID)
	defer unlock()

	channel, err := s.client.Channel(t.ChannelID)
	if err != nil {
		return platformErr("get_channel", t.ChannelID, err)
	}
	if existing := DecodeTopic(t.ChannelID, channel.Topic); existing != nil {
		return ErrConflict
	}

	return s.write(t)
}

func (s *TopicStore) Get(ctx context.Context, channelID string) (*entities.Ticket, error) {
	channel, err := s.client.Channel(channelID)
	if err != nil {
		// A missing channel reads as "no ticket"; the channel may be gone.
		return nil, ErrNotFound
	}

	t := DecodeTopic(channelID, channel.Topic)
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *TopicStore) Update(ctx context.Context, channelID string, mutate Mutator) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	t, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}

	updated := t.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	if err := s.write(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TopicStore) Delete(ctx context.Context, channelID string) error {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	if _, err := s.Get(ctx, channelID); err != nil {
		return err
	}

	if _, err := s.client.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		Topic: closedTopic,
	}); err != nil {
		return platformErr("edit_channel_topic", channelID, err)
	}

	s.locks.Forget(channelID)
	return nil
}

// Ping always succeeds; the store has no backing service of its own.
func (s *TopicStore) Ping(ctx context.Context) error {
	return nil
}

func (s *TopicStore) Close() error {
	return nil
}

func (s *TopicStore) write(t *entities.Ticket) error {
	topic, err := EncodeTopic(t)
	if err != nil {
		return err
	}

	if _, err := s.client.ChannelEditComplex(t.ChannelID, &discordgo.ChannelEdit{
		Topic: topic,
	}); err != nil {
		return platformErr("edit_channel_topic", t.ChannelID, err)
	}
	return nil
}
