package ticket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/oakrp/warden/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID    = "guild-1"
	testBotUserID  = "bot-1"
	testModRoleID  = "mod-role"
	testLogChannel = "log-chan"
)

var (
	modActor    = Actor{ID: "mod-1", DisplayName: "Mod", Roles: []string{testModRoleID}}
	secondMod   = Actor{ID: "mod-2", DisplayName: "Second Mod", Roles: []string{testModRoleID}}
	openerActor = Actor{ID: "user-1", DisplayName: "Agent Smith"}
	bystander   = Actor{ID: "user-9", DisplayName: "Bystander"}
)

func newTestService(t *testing.T, policy Policy) (*Service, *fakeSession) {
	t.Helper()

	fake := newFakeSession()
	store := NewTopicStore(fake)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(fake, store, Config{
		GuildID:      testGuildID,
		BotUserID:    testBotUserID,
		ModRoleID:    testModRoleID,
		NotifyRoleID: "notify-role",
		LogChannelID: testLogChannel,
		Categories: map[entities.Category]string{
			entities.CategoryDesk:            "cat-desk",
			entities.CategoryInternalAffairs: "cat-ia",
			entities.CategoryHR:              "cat-hr",
		},
		Policy: policy,
	}, l)
	return svc, fake
}

func TestOpenCreatesTicket(t *testing.T) {
	svc, fake := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID)
	assert.NotEmpty(t, tk.ChannelID)
	assert.Equal(t, openerActor.ID, tk.OpenerID)
	assert.False(t, tk.Claimed())
	assert.Empty(t, tk.AddedMembers)

	// The channel is private to the opener, the moderator role and the bot.
	channel, err := fake.Channel(tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "cat-desk", channel.ParentID)
	assert.Equal(t, "desk-support-agent-smith", channel.Name)

	byTarget := make(map[string]*discordgo.PermissionOverwrite)
	for _, ow := range channel.PermissionOverwrites {
		byTarget[ow.ID] = ow
	}
	require.Len(t, byTarget, 4)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), byTarget[testGuildID].Deny)
	assert.Equal(t, int64(ticketMemberPermissions), byTarget[openerActor.ID].Allow)
	assert.Equal(t, int64(ticketMemberPermissions), byTarget[testModRoleID].Allow)
	assert.Equal(t, int64(ticketMemberPermissions), byTarget[testBotUserID].Allow)

	// The status message is in the channel and referenced by the record.
	require.Equal(t, 1, fake.messageCount(tk.ChannelID))
	assert.Equal(t, tk.MessageID, fake.lastMessage(tk.ChannelID).ID)

	// The record is readable back through the store.
	got, err := svc.Store().Get(ctx, tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	// The creation event reached the log sink, pinging the notify role.
	logMsg := fake.lastMessage(testLogChannel)
	require.NotNil(t, logMsg)
	assert.Equal(t, "<@&notify-role>", logMsg.Content)
}

func TestOpenUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t, Policy{})

	_, err := svc.Open(context.Background(), openerActor, entities.Category("Billing"))
	require.ErrorIs(t, err, ErrCategoryUnresolvable)
}

func TestOpenCompensatesOnSendFailure(t *testing.T) {
	svc, fake := newTestService(t, Policy{})

	// The first created channel gets this ID; fail the status message send.
	fake.failSendOn = "chan-1"

	_, err := svc.Open(context.Background(), openerActor, entities.CategoryDesk)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCategoryUnresolvable)

	// The half-created channel must be gone again, along with any record.
	assert.True(t, fake.wasDeleted("chan-1"))
	_, err = svc.Store().Get(context.Background(), "chan-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClaim(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	got, err := svc.Claim(ctx, modActor, tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, modActor.ID, got.ClaimedBy)
	assert.Equal(t, modActor.DisplayName, got.ClaimedByName)

	// Claim is not idempotent, not even for the claimant themselves.
	_, err = svc.Claim(ctx, modActor, tk.ChannelID)
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	_, err = svc.Claim(ctx, secondMod, tk.ChannelID)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	// The claim survived the failed attempts.
	got, err = svc.Store().Get(ctx, tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, modActor.ID, got.ClaimedBy)
}

func TestClaimRequiresModeratorRole(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// Opening a ticket grants no claim rights.
	_, err = svc.Claim(ctx, openerActor, tk.ChannelID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestClaimUnknownChannel(t *testing.T) {
	svc, _ := newTestService(t, Policy{})

	_, err := svc.Claim(context.Background(), modActor, "not-a-ticket")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnclaim(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// Unclaiming an unclaimed ticket fails.
	_, err = svc.Unclaim(ctx, modActor, tk.ChannelID)
	require.ErrorIs(t, err, ErrNotClaimed)

	_, err = svc.Claim(ctx, modActor, tk.ChannelID)
	require.NoError(t, err)

	// Another moderator may not release the claim without the policy override.
	_, err = svc.Unclaim(ctx, secondMod, tk.ChannelID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Unclaim(ctx, modActor, tk.ChannelID)
	require.NoError(t, err)
	assert.False(t, got.Claimed())

	// Claimable again after release.
	got, err = svc.Claim(ctx, secondMod, tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, secondMod.ID, got.ClaimedBy)
}

func TestUnclaimModeratorOverride(t *testing.T) {
	svc, _ := newTestService(t, Policy{ModeratorMayUnclaim: true})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, modActor, tk.ChannelID)
	require.NoError(t, err)

	// The override extends to moderators only.
	_, err = svc.Unclaim(ctx, openerActor, tk.ChannelID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Unclaim(ctx, secondMod, tk.ChannelID)
	require.NoError(t, err)
	assert.False(t, got.Claimed())
}

func TestAddAndRemoveMember(t *testing.T) {
	svc, fake := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	got, err := svc.AddMember(ctx, modActor, tk.ChannelID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, got.AddedMembers)
	assert.True(t, fake.hasOverwrite(tk.ChannelID, "user-2"))

	// Re-adding is a no-op success.
	got, err = svc.AddMember(ctx, modActor, tk.ChannelID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, got.AddedMembers)

	// Removing clears both the record entry and the visibility overwrite.
	got, err = svc.RemoveMember(ctx, modActor, tk.ChannelID, "user-2")
	require.NoError(t, err)
	assert.Empty(t, got.AddedMembers)
	assert.False(t, fake.hasOverwrite(tk.ChannelID, "user-2"))
}

func TestMemberChangeAuthorization(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// The opener may manage members without the moderator role.
	_, err = svc.AddMember(ctx, openerActor, tk.ChannelID, "user-2")
	require.NoError(t, err)

	// Anyone else may not.
	_, err = svc.AddMember(ctx, bystander, tk.ChannelID, "user-3")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RemoveMember(ctx, bystander, tk.ChannelID, "user-2")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestConcurrentAddMembers(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddMember(ctx, modActor, tk.ChannelID, fmt.Sprintf("member-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// No update may be lost to a concurrent one.
	got, err := svc.Store().Get(ctx, tk.ChannelID)
	require.NoError(t, err)
	assert.Len(t, got.AddedMembers, 5)
}

func TestClose(t *testing.T) {
	svc, fake := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// Some conversation beyond the status message.
	for i := 0; i < 3; i++ {
		_, err := fake.ChannelMessageSendComplex(tk.ChannelID, &discordgo.MessageSend{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
	inChannel := fake.messageCount(tk.ChannelID)

	require.NoError(t, svc.Close(ctx, modActor, tk.ChannelID))

	// Record and channel are both gone.
	_, err = svc.Store().Get(ctx, tk.ChannelID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, fake.wasDeleted(tk.ChannelID))

	// The closure log entry carries the transcript file.
	logMsg := fake.lastMessage(testLogChannel)
	require.NotNil(t, logMsg)
	require.Len(t, logMsg.Attachments, 1)
	assert.Equal(t, fmt.Sprintf("purged_messages_%s.txt", tk.ChannelID), logMsg.Attachments[0].Filename)

	// Every message made it into the transcript, one line each.
	history, err := fake.ChannelMessages(tk.ChannelID, historyPageSize, "", "", "")
	require.NoError(t, err)
	require.Len(t, history, inChannel)
	transcript := RenderTranscript(history)
	assert.Equal(t, inChannel, strings.Count(transcript, "\n"))

	// A second close finds nothing.
	require.ErrorIs(t, svc.Close(ctx, modActor, tk.ChannelID), ErrNotFound)
}

func TestCloseAuthorization(t *testing.T) {
	svc, _ := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// Without the policy the opener cannot close their own ticket.
	require.ErrorIs(t, svc.Close(ctx, openerActor, tk.ChannelID), ErrForbidden)
	require.ErrorIs(t, svc.Close(ctx, bystander, tk.ChannelID), ErrForbidden)
}

func TestCloseOpenerPolicy(t *testing.T) {
	svc, fake := newTestService(t, Policy{OpenerMayClose: true})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	// The policy grants the opener closure, but nobody else.
	require.ErrorIs(t, svc.Close(ctx, bystander, tk.ChannelID), ErrForbidden)
	require.NoError(t, svc.Close(ctx, openerActor, tk.ChannelID))
	assert.True(t, fake.wasDeleted(tk.ChannelID))
}

func TestFullDeskScenario(t *testing.T) {
	svc, fake := newTestService(t, Policy{})
	ctx := context.Background()

	tk, err := svc.Open(ctx, openerActor, entities.CategoryDesk)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, modActor, tk.ChannelID)
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, modActor, tk.ChannelID, "user-2")
	require.NoError(t, err)

	got, err := svc.Store().Get(ctx, tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, modActor.ID, got.ClaimedBy)
	assert.Equal(t, []string{"user-2"}, got.AddedMembers)

	require.NoError(t, svc.Close(ctx, modActor, tk.ChannelID))
	assert.True(t, fake.wasDeleted(tk.ChannelID))
	_, err = svc.Store().Get(ctx, tk.ChannelID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenderTranscript(t *testing.T) {
	ts := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	history := []*discordgo.Message{
		{
			Author:    &discordgo.User{ID: "user-1", Username: "Agent Smith"},
			Content:   "hello",
			Timestamp: ts,
		},
		{
			Author:    &discordgo.User{ID: "mod-1", Username: "Mod"},
			Content:   "see attached",
			Timestamp: ts.Add(time.Minute),
			Attachments: []*discordgo.MessageAttachment{
				{URL: "https://cdn.example.com/a.png"},
				{URL: "https://cdn.example.com/b.png"},
			},
		},
		{
			Content:   "orphaned",
			Timestamp: ts.Add(2 * time.Minute),
		},
	}

	got := RenderTranscript(history)
	want := strings.Join([]string{
		"2024-05-17 09:30:00 UTC | Agent Smith (user-1): hello",
		"2024-05-17 09:31:00 UTC | Mod (mod-1): see attached [Attachments: https://cdn.example.com/a.png, https://cdn.example.com/b.png]",
		"2024-05-17 09:32:00 UTC | unknown (unknown): orphaned",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestHistoryPaginates(t *testing.T) {
	svc, fake := newTestService(t, Policy{})

	for i := 0; i < historyPageSize+25; i++ {
		_, err := fake.ChannelMessageSendComplex(testLogChannel, &discordgo.MessageSend{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	history, err := svc.History(testLogChannel)
	require.NoError(t, err)
	require.Len(t, history, historyPageSize+25)

	// Chronological order despite newest-first pages.
	assert.Equal(t, "message 0", history[0].Content)
	assert.Equal(t, fmt.Sprintf("message %d", historyPageSize+24), history[len(history)-1].Content)
}
