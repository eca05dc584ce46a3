package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/tdvan/noitu/internal/bot"
	"github.com/tdvan/noitu/internal/config"
	"github.com/tdvan/noitu/internal/game"
	"github.com/tdvan/noitu/internal/store"
	"github.com/tdvan/noitu/internal/ws"
	staticserver "github.com/tdvan/noitu/static"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`noitu - Telegram word-chain elimination game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                   Port to listen on (default: 8080)
  BOT_TOKEN              Telegram bot token (required)
  WEBHOOK_URL            Public base URL for the Telegram webhook;
                         empty switches to long polling
  BOT_USERNAME           Bot username for the /qr join link (optional)
  DB_PATH                SQLite path for the win tally (default: ./noitu.db)
  TURN_TIMEOUT_SECONDS   Per-turn deadline (default: 59)
  REUSE_LIMIT            Accepted uses per phrase (default: 1)
  REQUIRED_WORDS         Fixed phrase word count, 0 = any (default: 0)
  SPECTATOR              Serve the Socket.IO spectator feed (default: true)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("noitu %s\n", version)
		return
	}

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	if cfg.BotToken == "" {
		zerologlog.Fatal().Msg("BOT_TOKEN is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("telegram auth failed")
	}
	zerologlog.Info().Str("bot", api.Self.UserName).Msg("authorized")

	wins, err := store.Open(cfg.DBPath)
	if err != nil {
		zerologlog.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open win store failed")
	}
	defer wins.Close()

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Bot + engine wiring. The bot renders events into the chat; the
	// spectator feed mirrors them to browsers.
	b := bot.New(api, wins, zerologlog.Logger)

	rules := game.Rules{
		TurnTimeout:       cfg.TurnTimeout,
		ReuseLimit:        cfg.ReuseLimit,
		RequiredWordCount: cfg.RequiredWords,
	}

	botName := cfg.BotUsername
	if botName == "" {
		botName = api.Self.UserName
	}
	var feed *ws.Feed

	engine := game.NewEngine(rules, game.NotifierFunc(func(ev game.Event) {
		b.Notify(ev)
		if feed != nil {
			feed.Notify(ev)
		}
	}))
	b.Bind(engine)

	if cfg.Spectator {
		feed = ws.NewFeed(engine, "https://t.me/"+botName)
		io := feed.Mount(r)
		defer io.Close()
		r.GET("/watch", func(c *gin.Context) {
			staticserver.Handler().ServeHTTP(c.Writer, c.Request)
		})
	}

	// Telegram transport: webhook when a public URL is configured,
	// long polling otherwise (handy for local runs)
	if cfg.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(cfg.WebhookURL, "/") + "/webhook")
		if err != nil {
			zerologlog.Fatal().Err(err).Msg("bad webhook URL")
		}
		if _, err := api.Request(wh); err != nil {
			zerologlog.Fatal().Err(err).Msg("set webhook failed")
		}
		r.POST("/webhook", func(c *gin.Context) {
			var update tgbotapi.Update
			if err := c.ShouldBindJSON(&update); err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			b.HandleUpdate(update)
			c.String(http.StatusOK, "OK")
		})
	} else {
		zerologlog.Info().Msg("no WEBHOOK_URL, using long polling")
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updates := api.GetUpdatesChan(u)
		go func() {
			for update := range updates {
				b.HandleUpdate(update)
			}
		}()
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is running!")
	})

	zerologlog.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server stopped")
	}
}
