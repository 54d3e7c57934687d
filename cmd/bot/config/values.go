package config

const (
	// AppName is the name of the application.
	AppName = "gavel"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvGuildId is the environment variable for the guild that appeals are
	// handled in.
	EnvGuildId = `GUILD_ID`

	// EnvModRoleId is the environment variable for the moderator role that is
	// granted access to appeal channels.
	EnvModRoleId = `MOD_ROLE_ID`

	// EnvLogChannelId is the environment variable for the channel that
	// resolution summaries are posted to.
	EnvLogChannelId = `LOG_CHANNEL_ID`

	// EnvLogUrl is the environment variable for the base URL that transcript
	// links are built from.
	EnvLogUrl = `LOG_URL`

	// EnvLogUrlPrefix is the environment variable for the path prefix of
	// transcript links.
	EnvLogUrlPrefix = `LOG_URL_PREFIX`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// GuildId is the ID of the guild that appeals are handled in.
	GuildId string

	// ModRoleId is the ID of the moderator role. Optional; when unset only
	// the bot is granted access to new appeal channels.
	ModRoleId string

	// LogChannelId is the ID of the resolution summary channel. Optional.
	LogChannelId string

	// LogUrl is the base URL of the transcript viewer. Optional; links fall
	// back to paths on the monitoring server.
	LogUrl string

	// LogUrlPrefix is the path prefix of transcript links.
	LogUrlPrefix string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string
)
