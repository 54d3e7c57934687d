package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/cmd/bot/config"
	"github.com/Jacobbrewer1/gavel/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"github.com/Jacobbrewer1/gavel/pkg/request"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	// PathLog is the path for retrieving a transcript log by key.
	PathLog = "/logs/{key}"

	// PathIntakeStatus is the path for the appeal intake eligibility check.
	PathIntakeStatus = "/api/status"

	// PathIntakeAppeal is the path for submitting an appeal.
	PathIntakeAppeal = "/api/appeal"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the application logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// AppealDal returns the appeal data access layer.
	AppealDal(ctx context.Context) dataaccess.AppealDal

	// ConfigDal returns the appeal configuration data access layer.
	ConfigDal(ctx context.Context) dataaccess.AppealConfigDal

	// LogDal returns the transcript log data access layer.
	LogDal(ctx context.Context) dataaccess.LogDal

	// BotUser returns the bot's own user.
	BotUser() *discordgo.User

	// FetchUser fetches a user by ID.
	FetchUser(id string) (*discordgo.User, error)

	// GuildOwner fetches the owner of the appeals guild.
	GuildOwner() (*discordgo.User, error)

	// CreateAppealChannel creates the discussion channel for an appeal under
	// the given category.
	CreateAppealChannel(name string, categoryID string) (*discordgo.Channel, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(id string) error

	// SendEmbed sends an embed to a channel.
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error

	// IsBanned reports whether the user is banned from the appeals guild.
	IsBanned(userID string) (bool, error)

	// RemoveBan lifts the ban on a user. Returns ErrNotBanned when the user
	// is not banned.
	RemoveBan(userID string) error
}

type App struct {
	// l is the logger.
	l *slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// p is the appeal poller.
	p *poller

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		l: l,
		r: r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.l.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.l.Info("Bot is now running.")

	// Start the appeal poller.
	a.p = newPoller(a, pollInterval)
	a.p.start()

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Process shutdown signal.
	for sig := range c {
		a.l.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.l.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Stop the appeal poller. This waits for an in-flight cycle to finish so
	// that no appeal is left mid-provision.
	if a.p != nil {
		a.p.stop()
	}

	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Create event notifier. This is used to observe raw gateway events.
		// It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		a.l.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.l.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.l.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// Transcript retrieval.
	a.r.HandleFunc(PathLog, middlewareHttp(getLogController(a), a)).Methods(http.MethodGet)

	// Appeal intake.
	a.r.HandleFunc(PathIntakeStatus, middlewareHttp(intakeStatusController(a), a)).Methods(http.MethodGet)
	a.r.HandleFunc(PathIntakeAppeal, middlewareHttp(intakeAppealController(a), a)).Methods(http.MethodPost)

	a.r.NotFoundHandler = request.NotFoundHandler(a.l)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.l)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Mirror discussion messages into transcript logs.
	a.s.AddHandler(messageCreateHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		map[string]commandController{
			banappealCmd.Name: banappealCmdController,
			acceptCmd.Name:    acceptCmdController,
			denyCmd.Name:      denyCmdController,
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.l.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	for _, cmd := range applicationCommands {
		if _, err := a.s.ApplicationCommandCreate(config.ApplicationId, config.GuildId, cmd); err != nil {
			return fmt.Errorf("error creating %s command: %w", cmd.Name, err)
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	cmds, err := a.s.ApplicationCommands(config.ApplicationId, config.GuildId)
	if err != nil {
		return fmt.Errorf("error getting commands: %w", err)
	}

	for _, cmd := range cmds {
		if err := a.s.ApplicationCommandDelete(config.ApplicationId, config.GuildId, cmd.ID); err != nil {
			return fmt.Errorf("error deleting %s command: %w", cmd.Name, err)
		}
	}
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.l
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) AppealDal(ctx context.Context) dataaccess.AppealDal {
	return dataaccess.NewAppealDal(ctx, a.l)
}

func (a *App) ConfigDal(ctx context.Context) dataaccess.AppealConfigDal {
	return dataaccess.NewAppealConfigDal(ctx, a.l)
}

func (a *App) LogDal(ctx context.Context) dataaccess.LogDal {
	return dataaccess.NewLogDal(ctx, a.l)
}
