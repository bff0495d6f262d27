package config

const (
	// AppName is the name of the application.
	AppName = "warden"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvGuildId is the environment variable for the guild the bot serves.
	EnvGuildId = `GUILD_ID`

	// EnvModRoleId is the environment variable for the moderator role ID.
	EnvModRoleId = `MOD_ROLE_ID`

	// EnvNotifyRoleId is the environment variable for the role pinged on new tickets.
	EnvNotifyRoleId = `NOTIFY_ROLE_ID`

	// EnvLogChannelId is the environment variable for the log channel ID.
	EnvLogChannelId = `LOG_CHANNEL_ID`

	// EnvDeskCategoryId is the environment variable for the desk support category ID.
	EnvDeskCategoryId = `DESK_CATEGORY_ID`

	// EnvIaCategoryId is the environment variable for the internal affairs category ID.
	EnvIaCategoryId = `IA_CATEGORY_ID`

	// EnvHrCategoryId is the environment variable for the HR support category ID.
	EnvHrCategoryId = `HR_CATEGORY_ID`

	// EnvStoreBackend is the environment variable for the ticket store backend.
	EnvStoreBackend = `STORE_BACKEND`

	// EnvSqlitePath is the environment variable for the sqlite database path.
	EnvSqlitePath = `SQLITE_PATH`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvOpenerMayClose is the environment variable for the opener-close policy.
	EnvOpenerMayClose = `OPENER_MAY_CLOSE`

	// EnvModMayUnclaim is the environment variable for the moderator-unclaim policy.
	EnvModMayUnclaim = `MOD_MAY_UNCLAIM`
)

const (
	// StoreBackendTopic persists tickets in channel topics.
	StoreBackendTopic = "topic"

	// StoreBackendSqlite persists tickets in a local sqlite database.
	StoreBackendSqlite = "sqlite"

	// StoreBackendMongo persists tickets in MongoDB.
	StoreBackendMongo = "mongo"
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// GuildId is the guild the bot serves.
	GuildId string

	// ModRoleId is the role holding the moderator capability.
	ModRoleId string

	// NotifyRoleId is the role pinged when a ticket is created. Optional.
	NotifyRoleId string

	// LogChannelId is the channel audit entries are posted to. Optional.
	LogChannelId string

	// DeskCategoryId is the destination category for desk support tickets.
	DeskCategoryId string

	// IaCategoryId is the destination category for internal affairs tickets.
	IaCategoryId string

	// HrCategoryId is the destination category for HR support tickets.
	HrCategoryId string

	// StoreBackend selects the ticket store backend.
	StoreBackend string

	// SqlitePath is the path of the sqlite database file.
	SqlitePath string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// OpenerMayClose allows ticket openers to close their own tickets.
	OpenerMayClose bool

	// ModMayUnclaim allows moderators to release claims they do not hold.
	ModMayUnclaim bool
)
