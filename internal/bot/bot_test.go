package bot

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tdvan/noitu/internal/game"
	"github.com/tdvan/noitu/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func (f *fakeSender) lastContaining(sub string) (string, bool) {
	for _, text := range f.texts() {
		if strings.Contains(text, sub) {
			return text, true
		}
	}
	return "", false
}

const testChatID = int64(-100123)

func newTestBot(t *testing.T) (*Bot, *fakeSender, *store.Store) {
	t.Helper()
	wins, err := store.Open(filepath.Join(t.TempDir(), "wins.db"))
	if err != nil {
		t.Fatalf("should open store: %v", err)
	}
	t.Cleanup(func() { wins.Close() })

	sender := &fakeSender{}
	b := New(sender, wins, zerolog.Nop())
	rules := game.DefaultRules()
	rules.TurnTimeout = time.Hour
	b.Bind(game.NewEngine(rules, b))
	return b, sender, wins
}

func commandUpdate(userID int64, name, cmd string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, FirstName: name},
			Chat: &tgbotapi.Chat{ID: testChatID},
			Text: cmd,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(cmd)},
			},
		},
	}
}

func textUpdate(userID int64, name, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, FirstName: name},
			Chat: &tgbotapi.Chat{ID: testChatID},
			Text: text,
		},
	}
}

func TestStartgameAnnouncesInChat(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/startgame"))

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	if sender.sent[0].ChatID != testChatID {
		t.Fatalf("expected chat %d, got %d", testChatID, sender.sent[0].ChatID)
	}
	if !strings.Contains(sender.sent[0].Text, "Trò chơi bắt đầu") {
		t.Fatalf("unexpected start message: %q", sender.sent[0].Text)
	}
	if sender.sent[0].ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("expected HTML parse mode, got %q", sender.sent[0].ParseMode)
	}
}

func TestJoinAndDuplicateJoin(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/startgame"))
	b.HandleUpdate(commandUpdate(1, "An", "/join"))
	b.HandleUpdate(commandUpdate(2, "Bình", "/join"))
	b.HandleUpdate(commandUpdate(1, "An", "/join"))

	if _, ok := sender.lastContaining("An đã tham gia"); !ok {
		t.Fatal("expected join message for An")
	}
	if msg, ok := sender.lastContaining("đã tham gia... (Tổng 2 )"); !ok {
		t.Fatalf("expected total count in join message, got %v", sender.texts())
	} else if !strings.Contains(msg, "Bình") {
		t.Fatalf("expected Bình in second join message: %q", msg)
	}
	if _, ok := sender.lastContaining("Bạn đã tham gia rồi"); !ok {
		t.Fatal("expected duplicate-join notice")
	}
}

func TestBeginWithoutPlayers(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/startgame"))
	b.HandleUpdate(commandUpdate(1, "An", "/join"))
	b.HandleUpdate(commandUpdate(1, "An", "/begin"))

	if _, ok := sender.lastContaining("Cần ít nhất 2 người chơi"); !ok {
		t.Fatal("expected not-enough-players notice")
	}
}

func TestFullGameOverTelegram(t *testing.T) {
	b, sender, wins := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/startgame"))
	b.HandleUpdate(commandUpdate(1, "An", "/join"))
	b.HandleUpdate(commandUpdate(2, "Bình", "/join"))
	b.HandleUpdate(commandUpdate(1, "An", "/begin"))

	if _, ok := sender.lastContaining("hãy nhập cụm từ đầu tiên"); !ok {
		t.Fatal("expected opening prompt")
	}

	b.HandleUpdate(textUpdate(1, "An", "con meo"))
	if msg, ok := sender.lastContaining("hãy nối với từ"); !ok {
		t.Fatal("expected chaining prompt after opening")
	} else if !strings.Contains(msg, "'meo'") {
		t.Fatalf("expected link word meo in prompt: %q", msg)
	}

	// out-of-turn text is dropped without a reply
	before := len(sender.texts())
	b.HandleUpdate(textUpdate(1, "An", "meo con"))
	if len(sender.texts()) != before {
		t.Fatal("out-of-turn text should produce no message")
	}

	b.HandleUpdate(textUpdate(2, "Bình", "cho sua"))

	if _, ok := sender.lastContaining("Không đúng từ nối"); !ok {
		t.Fatalf("expected mismatch elimination, got %v", sender.texts())
	}
	if _, ok := sender.lastContaining("GIÀNH CHIẾN THẮNG"); !ok {
		t.Fatal("expected winner announcement")
	}

	top, err := wins.TopWinners(5)
	if err != nil {
		t.Fatalf("should read win tally: %v", err)
	}
	if len(top) != 1 || top[0].PlayerID != 1 || top[0].Wins != 1 {
		t.Fatalf("expected one recorded win for player 1, got %+v", top)
	}
}

func TestStatsCommand(t *testing.T) {
	b, sender, wins := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/startgame"))
	b.HandleUpdate(commandUpdate(1, "An", "/stats"))
	if _, ok := sender.lastContaining("Chưa có ai thắng"); !ok {
		t.Fatal("expected empty leaderboard notice")
	}

	wins.RecordWin("game-x", 2, "Bình")
	b.HandleUpdate(commandUpdate(1, "An", "/stats"))
	if msg, ok := sender.lastContaining("Bảng xếp hạng"); !ok {
		t.Fatal("expected leaderboard")
	} else if !strings.Contains(msg, "Bình — 1 lần thắng") {
		t.Fatalf("expected Bình's tally: %q", msg)
	}
}

func TestHelpCommand(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.HandleUpdate(commandUpdate(1, "An", "/help"))
	if _, ok := sender.lastContaining("/startgame"); !ok {
		t.Fatal("expected help text")
	}
}

func TestIgnoresTextWithoutLiveGame(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.HandleUpdate(textUpdate(1, "An", "con meo"))
	if len(sender.texts()) != 0 {
		t.Fatalf("expected no messages, got %v", sender.texts())
	}
}
