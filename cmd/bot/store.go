package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oakrp/warden/cmd/bot/config"
	"github.com/oakrp/warden/pkg/entities"
	"github.com/oakrp/warden/pkg/logging"
	"github.com/oakrp/warden/pkg/ticket"
)

// buildTicketService wires the ticket store and lifecycle service from the
// parsed configuration. The session must be open so the bot's own user can be
// resolved.
func (a *App) buildTicketService(ctx context.Context) error {
	botUser, err := a.s.User("@me")
	if err != nil {
		return fmt.Errorf("error resolving bot user: %w", err)
	}

	store, err := a.newStore(ctx)
	if err != nil {
		return err
	}
	a.Info("Ticket store ready", slog.String(logging.KeyBackend, config.StoreBackend))

	a.svc = ticket.NewService(ticket.AdaptSession(a.s), store, ticket.Config{
		GuildID:      config.GuildId,
		BotUserID:    botUser.ID,
		ModRoleID:    config.ModRoleId,
		NotifyRoleID: config.NotifyRoleId,
		LogChannelID: config.LogChannelId,
		Categories: map[entities.Category]string{
			entities.CategoryDesk:            config.DeskCategoryId,
			entities.CategoryInternalAffairs: config.IaCategoryId,
			entities.CategoryHR:              config.HrCategoryId,
		},
		Policy: ticket.Policy{
			OpenerMayClose:      config.OpenerMayClose,
			ModeratorMayUnclaim: config.ModMayUnclaim,
		},
	}, a.Log())
	return nil
}

// newStore creates the ticket store selected by the configuration.
func (a *App) newStore(ctx context.Context) (ticket.Store, error) {
	switch config.StoreBackend {
	case config.StoreBackendTopic:
		return ticket.NewTopicStore(ticket.AdaptSession(a.s)), nil
	case config.StoreBackendSqlite:
		store, err := ticket.NewSqliteStore(config.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("error opening sqlite store: %w", err)
		}
		return store, nil
	case config.StoreBackendMongo:
		client, err := ticket.ConnectMongo(ctx, config.MongoUri)
		if err != nil {
			return nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		return ticket.NewMongoStore(client, a.Log()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}
}
