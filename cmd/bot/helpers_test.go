package main

import (
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestInteractionActor(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{
				User:  &discordgo.User{ID: "user-1", Username: "wolf"},
				Nick:  "Agent Smith",
				Roles: []string{"role-1", "role-2"},
			},
		},
	}

	actor := interactionActor(i)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, "Agent Smith", actor.DisplayName)
	assert.Equal(t, []string{"role-1", "role-2"}, actor.Roles)
	assert.True(t, actor.HasRole("role-2"))
	assert.False(t, actor.HasRole("mod-role"))
}

func TestInteractionActorNoNick(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{
				User: &discordgo.User{ID: "user-1", Username: "wolf"},
			},
		},
	}

	actor := interactionActor(i)
	assert.Equal(t, "wolf", actor.DisplayName)
}

func TestInteractionActorNoMember(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

	actor := interactionActor(i)
	assert.Empty(t, actor.ID)
	assert.Empty(t, actor.Roles)
}
