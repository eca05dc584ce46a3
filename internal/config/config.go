package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	BotToken      string
	WebhookURL    string
	BotUsername   string
	DBPath        string
	TurnTimeout   time.Duration
	ReuseLimit    int
	RequiredWords int
	Spectator     bool
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.BotToken = os.Getenv("BOT_TOKEN")
	c.WebhookURL = os.Getenv("WEBHOOK_URL")
	c.BotUsername = os.Getenv("BOT_USERNAME")
	c.DBPath = getenv("DB_PATH", "./noitu.db")
	c.TurnTimeout = time.Duration(getint("TURN_TIMEOUT_SECONDS", 59)) * time.Second
	c.ReuseLimit = getint("REUSE_LIMIT", 1)
	c.RequiredWords = getint("REQUIRED_WORDS", 0)
	c.Spectator = getenv("SPECTATOR", "true") == "true"
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
