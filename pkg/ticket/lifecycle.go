package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/entities"
	"github.com/oakrp/warden/pkg/logging"
	"golang.org/x/time/rate"
)

// ticketMemberPermissions is the permission set granted to the opener, the
// moderator role and added members on a ticket channel.
const ticketMemberPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// Policy holds the transition rules that vary between deployments.
type Policy struct {
	// OpenerMayClose allows the ticket opener to close their own ticket even
	// without the moderator role.
	OpenerMayClose bool

	// ModeratorMayUnclaim allows any moderator to release a claim they do not
	// hold themselves.
	ModeratorMayUnclaim bool
}

// Config resolves the external collaborators of the ticket service.
type Config struct {
	// GuildID is the guild the bot serves.
	GuildID string

	// BotUserID is the bot's own user ID, granted visibility on every ticket.
	BotUserID string

	// ModRoleID is the role holding the moderator capability.
	ModRoleID string

	// NotifyRoleID is pinged on the creation log entry. Optional.
	NotifyRoleID string

	// LogChannelID is the log sink. The service only writes to it.
	LogChannelID string

	// Categories maps each ticket category to its destination guild category.
	Categories map[entities.Category]string

	// Policy is the transition policy.
	Policy Policy
}

// Actor is the user performing a transition.
type Actor struct {
	// ID is the user's ID.
	ID string

	// DisplayName is the user's display name, used in logs to avoid pings.
	DisplayName string

	// Roles is the user's role IDs.
	Roles []string
}

// HasRole reports whether the actor holds the role.
func (a Actor) HasRole(roleID string) bool {
	for _, r := range a.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Mention renders the actor as a mention.
func (a Actor) Mention() string {
	return fmt.Sprintf("<@%s>", a.ID)
}

// Service is the state machine governing one ticket's life, plus authorization.
// All state lives in the Store; the service itself holds only collaborators.
type Service struct {
	// l is the logger.
	l *slog.Logger

	// client is the discord client.
	client Session

	// store is the ticket store.
	store Store

	// cfg resolves categories, roles and the log sink.
	cfg Config

	// locks serializes transitions per channel.
	locks *keyedMutex

	// logLimiter caps the rate of posts to the log sink.
	logLimiter *rate.Limiter
}

// NewService creates the ticket lifecycle service.
func NewService(client Session, store Store, cfg Config, l *slog.Logger) *Service {
	return &Service{
		l:          l,
		client:     client,
		store:      store,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		logLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Store exposes the underlying store, for the health checker.
func (s *Service) Store() Store {
	return s.store
}

// Open creates a ticket for the actor under the given category: a private
// channel visible to the actor, the moderator role and the bot, a status embed
// with the ticket buttons, and a persisted record. If a step after channel
// creation fails the channel is deleted again, so no orphaned channels remain.
func (s *Service) Open(ctx context.Context, actor Actor, category entities.Category) (*entities.Ticket, error) {
	parentID, ok := s.cfg.Categories[category]
	if !ok || parentID == "" {
		return nil, fmt.Errorf("%w: %s", ErrCategoryUnresolvable, category)
	}
	if _, err := s.client.Channel(parentID); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCategoryUnresolvable, category, err)
	}

	t := entities.NewTicket(category, "", actor.ID, actor.DisplayName, time.Now())

	channel, err := s.client.GuildChannelCreateComplex(s.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:     t.ChannelName(),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			// Deny @everyone from seeing the ticket.
			{
				ID:   s.cfg.GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			// The opener can see the ticket.
			{
				ID:    actor.ID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: ticketMemberPermissions,
			},
			// The moderator role can see the ticket.
			{
				ID:    s.cfg.ModRoleID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: ticketMemberPermissions,
			},
			// The bot can see the ticket.
			{
				ID:    s.cfg.BotUserID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: ticketMemberPermissions,
			},
		},
	})
	if err != nil {
		return nil, platformErr("create_channel", "", err)
	}
	t.ChannelID = channel.ID

	msg, err := s.client.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embed:      StatusEmbed(t),
		Components: StatusComponents(false),
	})
	if err != nil {
		s.compensateOpen(channel.ID)
		return nil, platformErr("send_status_message", channel.ID, err)
	}
	t.MessageID = msg.ID

	if err := s.store.Create(ctx, t); err != nil {
		s.compensateOpen(channel.ID)
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// The creation log entry is the one event allowed to ping the notify role.
	mention := ""
	if s.cfg.NotifyRoleID != "" {
		mention = fmt.Sprintf("<@&%s>", s.cfg.NotifyRoleID)
	}
	s.log(ctx, "Ticket Created", actor.DisplayName, channel.ID,
		fmt.Sprintf("Type: %s\nOpened by: %s\nTicket ID: %s", t.Category, actor.DisplayName, t.ID), mention, nil)

	s.l.Info("Ticket opened",
		slog.String(logging.KeyTicket, t.ID),
		slog.String(logging.KeyChannel, channel.ID),
		slog.String(logging.KeyUser, actor.ID),
	)
	return t, nil
}

// compensateOpen deletes a freshly-created ticket channel after a later step
// of Open failed, so the guild is not littered with orphaned channels.
func (s *Service) compensateOpen(channelID string) {
	if _, err := s.client.ChannelDelete(channelID); err != nil {
		s.l.Error("Error deleting channel after failed ticket open",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// Claim assigns the ticket to the actor. Only moderators may claim, and a
// claimed ticket cannot be claimed again, not even by its own claimant.
func (s *Service) Claim(ctx context.Context, actor Actor, channelID string) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	if !actor.HasRole(s.cfg.ModRoleID) {
		return nil, fmt.Errorf("%w: claim requires the moderator role", ErrForbidden)
	}

	t, err := s.store.Update(ctx, channelID, func(t *entities.Ticket) error {
		if t.Claimed() {
			return ErrAlreadyClaimed
		}
		t.ClaimedBy = actor.ID
		t.ClaimedByName = actor.DisplayName
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshStatus(t)
	s.confirm(channelID, "Ticket Claimed", fmt.Sprintf("%s has claimed this ticket.", actor.Mention()))
	s.log(ctx, "Ticket Claimed", actor.DisplayName, channelID, fmt.Sprintf("Type: %s", t.Category), "", nil)
	return t, nil
}

// Unclaim releases the actor's claim. Only the claimant may release, unless
// the policy grants moderators an override.
func (s *Service) Unclaim(ctx context.Context, actor Actor, channelID string) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	t, err := s.store.Update(ctx, channelID, func(t *entities.Ticket) error {
		if !t.Claimed() {
			return ErrNotClaimed
		}
		if t.ClaimedBy != actor.ID && !(s.cfg.Policy.ModeratorMayUnclaim && actor.HasRole(s.cfg.ModRoleID)) {
			return fmt.Errorf("%w: only the claimant may unclaim", ErrForbidden)
		}
		t.ClaimedBy = ""
		t.ClaimedByName = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshStatus(t)
	s.log(ctx, "Ticket Unclaimed", actor.DisplayName, channelID, fmt.Sprintf("Type: %s", t.Category), "", nil)
	return t, nil
}

// AddMember grants the target visibility on the ticket channel and records
// them in the added-member set. Re-adding is a no-op success; adding the
// opener only grants the (already implicit) visibility.
func (s *Service) AddMember(ctx context.Context, actor Actor, channelID, targetID string) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	if err := s.authorizeMemberChange(ctx, actor, channelID); err != nil {
		return nil, err
	}

	if err := s.client.ChannelPermissionSet(channelID, targetID, discordgo.PermissionOverwriteTypeMember, ticketMemberPermissions, 0); err != nil {
		return nil, platformErr("set_channel_permission", channelID, err)
	}

	t, err := s.store.Update(ctx, channelID, func(t *entities.Ticket) error {
		t.AddMember(targetID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshStatus(t)
	s.confirm(channelID, "User Added to Ticket", fmt.Sprintf("<@%s> added to ticket by %s", targetID, actor.Mention()))
	// Add/remove log entries are allowed to mention the member.
	s.log(ctx, "User Added to Ticket", actor.DisplayName, channelID, fmt.Sprintf("Added <@%s>", targetID), "", nil)
	return t, nil
}

// RemoveMember clears the target's visibility overwrite, reverting them to the
// channel default (invisible), and removes them from the added-member set.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, channelID, targetID string) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	if err := s.authorizeMemberChange(ctx, actor, channelID); err != nil {
		return nil, err
	}

	if err := s.client.ChannelPermissionDelete(channelID, targetID); err != nil {
		return nil, platformErr("delete_channel_permission", channelID, err)
	}

	t, err := s.store.Update(ctx, channelID, func(t *entities.Ticket) error {
		t.RemoveMember(targetID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshStatus(t)
	s.confirm(channelID, "User Removed from Ticket", fmt.Sprintf("<@%s> removed from ticket by %s", targetID, actor.Mention()))
	s.log(ctx, "User Removed from Ticket", actor.DisplayName, channelID, fmt.Sprintf("Removed <@%s>", targetID), "", nil)
	return t, nil
}

// authorizeMemberChange allows moderators and the ticket opener to change the
// added-member set.
func (s *Service) authorizeMemberChange(ctx context.Context, actor Actor, channelID string) error {
	if actor.HasRole(s.cfg.ModRoleID) {
		return nil
	}

	t, err := s.store.Get(ctx, channelID)
	if err != nil {
		return err
	}
	if t.OpenerID != actor.ID {
		return fmt.Errorf("%w: only moderators or the opener may change ticket members", ErrForbidden)
	}
	return nil
}

// Close is the terminal transition: render the transcript, post it to the log
// sink with a closure embed, delete the record and delete the channel. Once
// Close begins it runs to completion; a crash mid-close leaves the ticket open
// and Close can be invoked again.
func (s *Service) Close(ctx context.Context, actor Actor, channelID string) error {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	t, err := s.store.Get(ctx, channelID)
	if err != nil {
		return err
	}

	if !actor.HasRole(s.cfg.ModRoleID) && !(s.cfg.Policy.OpenerMayClose && t.OpenerID == actor.ID) {
		return fmt.Errorf("%w: close requires the moderator role", ErrForbidden)
	}

	history, err := s.History(channelID)
	if err != nil {
		return err
	}
	transcript := RenderTranscript(history)

	details := fmt.Sprintf("Type: %s\nClosed by: %s", t.Category, actor.DisplayName)
	s.log(ctx, "Ticket Closed", actor.DisplayName, channelID, details, "", &discordgo.File{
		Name:        fmt.Sprintf("purged_messages_%s.txt", channelID),
		ContentType: "text/plain",
		Reader:      strings.NewReader(transcript),
	})

	if err := s.store.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("error deleting ticket record: %w", err)
	}

	if _, err := s.client.ChannelDelete(channelID); err != nil {
		return platformErr("delete_channel", channelID, err)
	}

	s.l.Info("Ticket closed",
		slog.String(logging.KeyTicket, t.ID),
		slog.String(logging.KeyChannel, channelID),
		slog.String(logging.KeyUser, actor.ID),
	)
	return nil
}

// refreshStatus re-projects the stored record onto the status embed. A failed
// edit is reported but never rolls the record back; the store stays the source
// of truth.
func (s *Service) refreshStatus(t *entities.Ticket) {
	if t.MessageID == "" {
		return
	}

	if _, err := s.client.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    t.ChannelID,
		ID:         t.MessageID,
		Embed:      StatusEmbed(t),
		Components: StatusComponents(t.Claimed()),
	}); err != nil {
		s.l.Error("Error updating ticket status message",
			slog.String(logging.KeyChannel, t.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// confirm posts a visible confirmation embed inside the ticket channel.
func (s *Service) confirm(channelID, title, description string) {
	if _, err := s.client.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: confirmEmbed(title, description),
	}); err != nil {
		s.l.Error("Error sending confirmation message",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// log posts a consistent embed to the log sink. Unless a mention is passed
// explicitly, display names are used so log entries never ping anyone.
func (s *Service) log(ctx context.Context, action, who, channelID, details, mention string, file *discordgo.File) {
	if s.cfg.LogChannelID == "" {
		return
	}

	if err := s.logLimiter.Wait(ctx); err != nil {
		s.l.Warn("Skipping log sink entry", slog.String(logging.KeyError, err.Error()))
		return
	}

	msg := &discordgo.MessageSend{
		Content: mention,
		Embed:   logEmbed(action, who, channelID, details),
	}
	if file != nil {
		msg.Files = []*discordgo.File{file}
	}

	if _, err := s.client.ChannelMessageSendComplex(s.cfg.LogChannelID, msg); err != nil {
		s.l.Error("Error posting to log sink",
			slog.String(logging.KeyOperation, action),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// LogAction records an action to the log sink, optionally with an attachment.
// Used for events outside the ticket lifecycle that share the audit trail.
func (s *Service) LogAction(ctx context.Context, action, who, channelID, details string, file *discordgo.File) {
	s.log(ctx, action, who, channelID, details, "", file)
}

// LogFailure records an operational error to the log sink with enough detail
// to diagnose. User errors never reach the sink.
func (s *Service) LogFailure(ctx context.Context, err error) {
	if err == nil || IsUserError(err) {
		return
	}

	op := "unknown"
	channelID := ""
	var pe *PlatformError
	if errors.As(err, &pe) {
		op = pe.Op
		channelID = pe.ChannelID
	}

	s.log(ctx, "Operation Failed", "Ticket System", channelID,
		fmt.Sprintf("Operation: %s\nError: %s", op, err.Error()), "", nil)
}
