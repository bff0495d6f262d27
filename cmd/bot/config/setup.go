package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oakrp/warden/pkg/logging"
	"github.com/spf13/viper"
)

// Parse loads the configuration from the environment, with a .env file as an
// optional local source. Missing required values are fatal.
func Parse(l *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		l.Debug("No .env file found, using environment only")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EnvStoreBackend, StoreBackendTopic)
	v.SetDefault(EnvSqlitePath, AppName+".db")
	v.SetDefault(EnvMonitoringPort, "8080")

	BotToken = v.GetString(EnvBotToken)
	ApplicationId = v.GetString(EnvApplicationId)
	GuildId = v.GetString(EnvGuildId)
	ModRoleId = v.GetString(EnvModRoleId)
	NotifyRoleId = v.GetString(EnvNotifyRoleId)
	LogChannelId = v.GetString(EnvLogChannelId)
	DeskCategoryId = v.GetString(EnvDeskCategoryId)
	IaCategoryId = v.GetString(EnvIaCategoryId)
	HrCategoryId = v.GetString(EnvHrCategoryId)
	StoreBackend = strings.ToLower(v.GetString(EnvStoreBackend))
	SqlitePath = v.GetString(EnvSqlitePath)
	MongoUri = v.GetString(EnvMongoUri)
	MonitoringPort = v.GetString(EnvMonitoringPort)
	OpenerMayClose = v.GetBool(EnvOpenerMayClose)
	ModMayUnclaim = v.GetBool(EnvModMayUnclaim)

	missing := make([]string, 0)
	for env, value := range map[string]string{
		EnvBotToken:       BotToken,
		EnvApplicationId:  ApplicationId,
		EnvGuildId:        GuildId,
		EnvModRoleId:      ModRoleId,
		EnvDeskCategoryId: DeskCategoryId,
		EnvIaCategoryId:   IaCategoryId,
		EnvHrCategoryId:   HrCategoryId,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		l.Error("Not all required environment variables have been provided",
			slog.String(logging.KeyError, "Incomplete configuration"),
			slog.String("missing", strings.Join(missing, ", ")),
		)
		os.Exit(1)
	}

	switch StoreBackend {
	case StoreBackendTopic, StoreBackendSqlite:
	case StoreBackendMongo:
		if MongoUri == "" {
			l.Error("Mongo store backend selected without a MongoDB URI",
				slog.String("key", EnvMongoUri),
			)
			os.Exit(1)
		}
	default:
		l.Error("Unknown store backend",
			slog.String(logging.KeyBackend, StoreBackend),
			slog.String("key", EnvStoreBackend),
		)
		os.Exit(1)
	}

	if NotifyRoleId == "" {
		l.Info("No notify role provided, ticket creation will not ping anyone", slog.String("key", EnvNotifyRoleId))
	}
	if LogChannelId == "" {
		l.Info("No log channel provided, audit logging is disabled", slog.String("key", EnvLogChannelId))
	}

	l.Debug("Configuration parsed", slog.String(logging.KeyBackend, StoreBackend))
}
