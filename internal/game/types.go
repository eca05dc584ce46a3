package game

import (
	"time"
)

type Phase string

const (
	PhaseIdle            Phase = "Idle"
	PhaseLobby           Phase = "Lobby"
	PhaseAwaitingOpening Phase = "AwaitingOpening"
	PhaseInProgress      Phase = "InProgress"
	PhaseFinished        Phase = "Finished"
)

// Player is one roster entry. ID is whatever opaque identity the chat
// boundary hands us (a Telegram user ID); Name is carried for the boundary's
// benefit only and is never interpreted here.
type Player struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Rules holds the tunable rule parameters. Groups play with different house
// rules, so none of these are hardcoded.
type Rules struct {
	TurnTimeout       time.Duration `json:"turnTimeout"`
	ReuseLimit        int           `json:"reuseLimit"`
	RequiredWordCount int           `json:"requiredWordCount"` // 0 disables the shape check
}

// DefaultRules is the configuration the engine runs with unless the host
// overrides it: 59s turns, a phrase may be accepted once, any word count.
func DefaultRules() Rules {
	return Rules{
		TurnTimeout:       59 * time.Second,
		ReuseLimit:        1,
		RequiredWordCount: 0,
	}
}

// Reason tags a PlayerEliminated event with why the player is out.
type Reason string

const (
	ReasonMismatch Reason = "mismatch"
	ReasonOveruse  Reason = "overuse"
	ReasonShape    Reason = "shape"
	ReasonEmpty    Reason = "empty"
	ReasonTimeout  Reason = "timeout"
)

type EventType string

const (
	EvGameStarted      EventType = "game:started"
	EvPlayerJoined     EventType = "player:joined"
	EvAlreadyJoined    EventType = "player:already_joined"
	EvNotEnoughPlayers EventType = "game:not_enough_players"
	EvTurnPrompt       EventType = "turn:prompt"
	EvTurnAccepted     EventType = "turn:accepted"
	EvPlayerEliminated EventType = "player:eliminated"
	EvPlayersRemaining EventType = "game:players_remaining"
	EvWinnerDeclared   EventType = "game:winner"
)

// Event is the structured outcome record the engine hands to its Notifier.
// Fields beyond Type and GameID are populated per event type; the boundary
// resolves player IDs to display mentions itself.
type Event struct {
	Type     EventType `json:"type"`
	GameID   string    `json:"gameId"`
	PlayerID int64     `json:"playerId,omitempty"`
	LinkWord string    `json:"linkWord,omitempty"`
	Phrase   string    `json:"phrase,omitempty"`
	Count    int       `json:"count,omitempty"`
	Reason   Reason    `json:"reason,omitempty"`
}

// Notifier consumes engine events. The engine invokes Notify while holding
// its own lock, so implementations must not call back into the engine
// synchronously.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }
