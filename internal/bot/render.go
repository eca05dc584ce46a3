package bot

import (
	"fmt"
	"html"

	"github.com/tdvan/noitu/internal/game"
)

// mention builds the tg://user deep link so players get pinged even without
// a public username.
func (b *Bot) mention(id int64) string {
	return fmt.Sprintf("<a href='tg://user?id=%d'>@%s</a>", id, html.EscapeString(b.displayName(id)))
}

func reasonText(r game.Reason) string {
	switch r {
	case game.ReasonMismatch:
		return "Không đúng từ nối"
	case game.ReasonOveruse:
		return "Cụm từ bị lặp quá giới hạn"
	case game.ReasonShape:
		return "Sai số từ quy định"
	case game.ReasonEmpty:
		return "Cụm từ trống"
	default:
		return string(r)
	}
}

// render turns one engine event into chat text. An empty string means the
// event produces no message.
func (b *Bot) render(ev game.Event) string {
	switch ev.Type {
	case game.EvGameStarted:
		return "🎮 Trò chơi bắt đầu!\nGõ /join để tham gia trò chơi.\nGõ /begin để bắt đầu lượt đầu tiên."
	case game.EvPlayerJoined:
		return fmt.Sprintf("✅ %s đã tham gia... (Tổng %d )", html.EscapeString(b.displayName(ev.PlayerID)), ev.Count)
	case game.EvAlreadyJoined:
		return "⚠️ Bạn đã tham gia rồi!"
	case game.EvNotEnoughPlayers:
		return "❗ Cần ít nhất 2 người chơi để bắt đầu."
	case game.EvTurnPrompt:
		if ev.LinkWord == "" {
			return fmt.Sprintf("✏️ %s, hãy nhập cụm từ đầu tiên để bắt đầu trò chơi!", b.mention(ev.PlayerID))
		}
		return fmt.Sprintf("✅ Từ bắt đầu là: '%s'. %s, hãy nối với từ '%s'", ev.Phrase, b.mention(ev.PlayerID), ev.LinkWord)
	case game.EvTurnAccepted:
		return fmt.Sprintf("✅ Hợp lệ! '%s' là từ cần nối tiếp. %s, tới lượt bạn!", ev.LinkWord, b.mention(ev.PlayerID))
	case game.EvPlayerEliminated:
		if ev.Reason == game.ReasonTimeout {
			return fmt.Sprintf("⏰ %s hết thời gian và bị loại!", b.mention(ev.PlayerID))
		}
		return fmt.Sprintf("❌ %s bị loại! Lý do: %s", html.EscapeString(b.displayName(ev.PlayerID)), reasonText(ev.Reason))
	case game.EvPlayersRemaining:
		return fmt.Sprintf("Hiện còn lại %d người chơi.", ev.Count)
	case game.EvWinnerDeclared:
		return fmt.Sprintf("🏆 %s GIÀNH CHIẾN THẮNG!", b.mention(ev.PlayerID))
	default:
		return ""
	}
}
