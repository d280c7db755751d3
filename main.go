package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sobot/internal/adapters/fetcher"
	"sobot/internal/adapters/handler"
	"sobot/internal/adapters/sender"
	"sobot/internal/adapters/storage"
	"sobot/internal/adapters/transport"
	"sobot/internal/core/domain/commands"
	"sobot/internal/core/port"
	"sobot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting sobot...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(getStringOrDefault("storage.path", "sobot.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed opening storage")
	}
	defer store.Close()

	httpFetcher := fetcher.NewHTTP(getDurationOrDefault("handler.request_timeout", 30*time.Second))

	rooms := viper.GetStringSlice("bot.rooms")

	switch viper.GetString("bot.transport") {
	case "telegram":
		runTelegram(ctx, store, httpFetcher, rooms)
	case "websocket", "":
		runWebSocket(ctx, store, httpFetcher, rooms)
	default:
		log.Fatal().Str("transport", viper.GetString("bot.transport")).Msg("unknown transport")
	}
}

func runWebSocket(ctx context.Context, store *storage.SQLite, httpFetcher port.Fetcher, rooms []string) {
	client, err := transport.Dial(ctx, viper.GetString("chat.ws_url"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed connecting to chat server")
	}

	s := sender.NewWebSocketSender(client)
	dispatcher := wire(ctx, s, store, httpFetcher, rooms)

	client.OnMessage(dispatcher.Handle)

	for _, room := range rooms {
		if err := client.Join(ctx, room); err != nil {
			log.Fatal().Err(err).Str("room", room).Msg("failed joining room")
		}
	}

	log.Info().Msg("bot listening")
	if err := client.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("chat connection lost")
	}
}

func runTelegram(ctx context.Context, store *storage.SQLite, httpFetcher port.Fetcher, rooms []string) {
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(viper.GetString("telegram.bot_token"), opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing telegram bot")
	}

	s := sender.NewTelegramSender(b)
	dispatcher := wire(ctx, s, store, httpFetcher, rooms)

	trigger := getStringOrDefault("bot.trigger", "!!")
	b.RegisterHandler(bot.HandlerTypeMessageText, trigger, bot.MatchTypePrefix, dispatcher.HandleTelegram)

	log.Info().Msg("bot listening")
	b.Start(ctx)
}

// wire assembles registry, handlers, and monitors around the chosen sender
// and returns the inbound dispatcher.
func wire(ctx context.Context, s port.Sender, store *storage.SQLite, httpFetcher port.Fetcher, rooms []string) *handler.Dispatcher {
	kv := store.KV()
	admins := store.Admins()

	for _, room := range rooms {
		for _, ownerID := range viper.GetIntSlice("admin.owners") {
			if err := admins.AddOwner(ctx, room, int64(ownerID)); err != nil {
				log.Fatal().Err(err).Str("room", room).Msg("failed seeding room owner")
			}
		}
	}

	registry := service.NewRegistry(kv)

	builtIns := []port.Command{
		commands.NewAdminHandler(s, httpFetcher, admins, "admin"),
		commands.NewPluginHandler(s, registry, admins, "plugin"),
		commands.NewUptimeHandler(s, "uptime", time.Now()),
	}
	for _, builtIn := range builtIns {
		if err := registry.RegisterBuiltIn(builtIn); err != nil {
			log.Fatal().Err(err).Msg("failed registering built-in")
		}
	}

	plugins := []port.Command{
		commands.NewGithubHandler(s, httpFetcher, "github"),
		commands.NewUrbanHandler(s, httpFetcher, "urban"),
		commands.NewPackagistHandler(s, httpFetcher, "packagist"),
		commands.NewXkcdHandler(s, httpFetcher, "xkcd"),
		commands.NewWotdHandler(s, httpFetcher, "wotd"),
		commands.NewImdbHandler(s, httpFetcher, "imdb"),
	}
	for _, plugin := range plugins {
		if err := registry.RegisterPlugin(plugin); err != nil {
			log.Fatal().Err(err).Msg("failed registering plugin")
		}
	}

	for _, room := range rooms {
		if err := registry.Restore(ctx, room); err != nil {
			log.Fatal().Err(err).Str("room", room).Msg("failed restoring plugin enablement")
		}

		if len(registry.EnabledForRoom(room)) == 0 {
			for _, plugin := range viper.GetStringSlice("bot.default_plugins") {
				if err := registry.EnableForRoom(ctx, room, plugin); err != nil {
					log.Fatal().Err(err).Str("plugin", plugin).Msg("failed enabling default plugin")
				}
			}
		}
	}

	if viper.GetBool("monitor.bugs_enabled") {
		source := commands.NewBugSource(httpFetcher, viper.GetString("monitor.bugs_url"))
		monitor := service.NewMonitor(source, s, kv, getDurationOrDefault("monitor.poll_interval", 300*time.Second))

		monitorRooms := viper.GetStringSlice("monitor.rooms")
		if len(monitorRooms) == 0 {
			monitorRooms = rooms
		}
		for _, room := range monitorRooms {
			monitor.Subscribe(room)
		}

		go monitor.Run(ctx)
	}

	trigger := getStringOrDefault("bot.trigger", "!!")

	return handler.NewDispatcher(registry, trigger, getDurationOrDefault("handler.timeout", 60*time.Second))
}

func getStringOrDefault(key, fallback string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}

	return fallback
}

func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	value := viper.GetString(key)
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("invalid duration in config")
	}

	return d
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
