package bot

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tdvan/noitu/internal/game"
	"github.com/tdvan/noitu/internal/store"
)

// Sender is the slice of tgbotapi.BotAPI the bot needs; tests substitute a
// recording fake.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot routes Telegram updates into the game engine and renders engine
// events back into chat messages. It is the Notifier boundary: the engine
// hands it structured events, it owns all formatting and mention markup.
//
// One live game at a time, bound to the chat that issued /startgame.
type Bot struct {
	sender Sender
	engine *game.Engine
	wins   *store.Store
	log    zerolog.Logger

	mu     sync.Mutex
	chatID int64
	names  map[int64]string
}

func New(sender Sender, wins *store.Store, log zerolog.Logger) *Bot {
	return &Bot{
		sender: sender,
		wins:   wins,
		log:    log,
		names:  make(map[int64]string),
	}
}

// Bind attaches the engine the bot drives. Done after construction because
// the engine is created with the bot (plus any other notifier) as its sink.
func (b *Bot) Bind(engine *game.Engine) { b.engine = engine }

// HandleUpdate processes one inbound Telegram update.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	b.mu.Lock()
	b.names[msg.From.ID] = msg.From.FirstName
	if msg.IsCommand() && msg.Command() == "startgame" {
		b.chatID = msg.Chat.ID
	}
	b.mu.Unlock()

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// plain text only matters while a game is live; the engine silently
	// rejects out-of-turn senders
	if msg.Text == "" || !b.engine.Live() {
		return
	}
	err := b.engine.Submit(msg.From.ID, msg.Text)
	if err != nil && !errors.Is(err, game.ErrNotYourTurn) && !errors.Is(err, game.ErrWrongPhase) {
		b.log.Warn().Err(err).Int64("player", msg.From.ID).Msg("submit failed")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "startgame":
		b.engine.StartGame()
	case "join":
		err := b.engine.Join(msg.From.ID, msg.From.FirstName)
		if err != nil && !errors.Is(err, game.ErrAlreadyJoined) && !errors.Is(err, game.ErrWrongPhase) {
			b.log.Warn().Err(err).Msg("join failed")
		}
	case "begin":
		err := b.engine.Begin()
		if err != nil && !errors.Is(err, game.ErrNotEnoughPlayers) && !errors.Is(err, game.ErrWrongPhase) {
			b.log.Warn().Err(err).Msg("begin failed")
		}
	case "stats":
		b.sendStats(msg.Chat.ID)
	case "help":
		b.send(msg.Chat.ID, helpText)
	}
}

const helpText = "/startgame - bắt đầu trò chơi\n/join - tham gia\n/begin - người đầu tiên nhập cụm từ\n/stats - bảng xếp hạng\n/help - hướng dẫn"

func (b *Bot) sendStats(chatID int64) {
	if b.wins == nil {
		return
	}
	top, err := b.wins.TopWinners(5)
	if err != nil {
		b.log.Error().Err(err).Msg("stats query failed")
		return
	}
	if len(top) == 0 {
		b.send(chatID, "Chưa có ai thắng cả!")
		return
	}
	var sb strings.Builder
	sb.WriteString("🏆 Bảng xếp hạng:\n")
	for i, w := range top {
		fmt.Fprintf(&sb, "%d. %s — %d lần thắng\n", i+1, w.Name, w.Wins)
	}
	b.send(chatID, sb.String())
}

// Notify implements game.Notifier. The engine calls it while holding its
// own lock, so nothing here may call back into the engine.
func (b *Bot) Notify(ev game.Event) {
	if ev.Type == game.EvWinnerDeclared && b.wins != nil {
		name := b.displayName(ev.PlayerID)
		if err := b.wins.RecordWin(ev.GameID, ev.PlayerID, name); err != nil {
			b.log.Error().Err(err).Int64("player", ev.PlayerID).Msg("record win failed")
		}
	}

	text := b.render(ev)
	if text == "" {
		return
	}
	b.mu.Lock()
	chatID := b.chatID
	b.mu.Unlock()
	if chatID == 0 {
		return
	}
	b.send(chatID, text)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.sender.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("send failed")
	}
}

func (b *Bot) displayName(id int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name, ok := b.names[id]; ok && name != "" {
		return name
	}
	return "người chơi"
}
