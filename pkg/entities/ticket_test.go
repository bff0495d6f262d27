package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket(t *testing.T) {
	now := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	tk := NewTicket(CategoryDesk, "chan-1", "user-1", "Wolf", now)

	require.Equal(t, "20240517093000", tk.ID)
	assert.Equal(t, CategoryDesk, tk.Category)
	assert.Equal(t, "user-1", tk.OpenerID)
	assert.False(t, tk.Claimed())
	assert.Empty(t, tk.AddedMembers)
}

func TestTicketAddMember(t *testing.T) {
	tests := []struct {
		name string
		add  []string
		want []string
	}{
		{
			name: "Single",
			add:  []string{"user-2"},
			want: []string{"user-2"},
		},
		{
			name: "Duplicate",
			add:  []string{"user-2", "user-2"},
			want: []string{"user-2"},
		},
		{
			name: "Opener",
			add:  []string{"user-1"},
			want: nil,
		},
		{
			name: "Mixed",
			add:  []string{"user-2", "user-1", "user-3", "user-2"},
			want: []string{"user-2", "user-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := NewTicket(CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
			for _, id := range tt.add {
				tk.AddMember(id)
			}
			assert.Equal(t, tt.want, tk.AddedMembers)
		})
	}
}

func TestTicketRemoveMember(t *testing.T) {
	tk := NewTicket(CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	tk.AddMember("user-2")
	tk.AddMember("user-3")

	tk.RemoveMember("user-2")
	assert.Equal(t, []string{"user-3"}, tk.AddedMembers)

	// Removing someone who is not in the set is a no-op.
	tk.RemoveMember("user-2")
	assert.Equal(t, []string{"user-3"}, tk.AddedMembers)
}

func TestTicketChannelName(t *testing.T) {
	tk := NewTicket(CategoryInternalAffairs, "chan-1", "user-1", "Agent Smith!", time.Now())
	assert.Equal(t, "internal-affairs-agent-smith", tk.ChannelName())
}

func TestSanitizeChannelName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Spaces", in: "Desk Support wolf", want: "desk-support-wolf"},
		{name: "Symbols", in: "HR+ Support @user", want: "hr-support-user"},
		{name: "Underscore", in: "desk_wolf", want: "desk_wolf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeChannelName(tt.in))
		})
	}
}

func TestTicketCloneIsIndependent(t *testing.T) {
	tk := NewTicket(CategoryHR, "chan-1", "user-1", "Wolf", time.Now())
	tk.AddMember("user-2")

	clone := tk.Clone()
	clone.AddMember("user-3")
	clone.ClaimedBy = "mod-1"

	assert.Equal(t, []string{"user-2"}, tk.AddedMembers)
	assert.False(t, tk.Claimed())
}
