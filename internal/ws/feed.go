package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/rs/zerolog/log"

	"github.com/tdvan/noitu/internal/game"
)

const spectatorRoom = "spectators"

// Feed is a read-only Socket.IO fan-out of engine events so a browser
// scoreboard can follow the game live. Spectators never feed input back;
// all play happens in the Telegram chat.
type Feed struct {
	io      *socketio.Server
	engine  *game.Engine
	botLink string
}

func NewFeed(engine *game.Engine, botLink string) *Feed {
	return &Feed{engine: engine, botLink: botLink}
}

// Mount attaches the Socket.IO server and the QR join helper to the router.
func (f *Feed) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	f.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.Join(spectatorRoom)
		log.Info().Str("sid", s.ID()).Msg("spectator connected")

		// late joiners get a state snapshot right away
		players := f.engine.Players()
		payload := map[string]any{
			"phase":   string(f.engine.Phase()),
			"players": players,
			"phrase":  f.engine.CurrentPhrase(),
		}
		if cur, ok := f.engine.CurrentPlayer(); ok {
			payload["currentPlayer"] = cur.ID
		}
		s.Emit("game:state", payload)
		return nil
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("spectator disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// QR code with the bot's t.me link, for projecting next to the scoreboard
	r.GET("/qr", func(c *gin.Context) {
		if f.botLink == "" {
			c.Status(http.StatusNotFound)
			return
		}
		png, err := qrcode.Encode(f.botLink, qrcode.Medium, 256)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	return io
}

// Notify implements game.Notifier by broadcasting every event to the
// spectator room.
func (f *Feed) Notify(ev game.Event) {
	if f.io == nil {
		return
	}
	f.io.BroadcastToRoom("/", spectatorRoom, "game:event", ev)
}
