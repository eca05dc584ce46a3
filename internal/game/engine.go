package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWrongPhase       = errors.New("action not valid in current phase")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotEnoughPlayers = errors.New("need at least 2 players")
	ErrNotYourTurn      = errors.New("not this player's turn")
)

// Engine owns the authoritative game aggregate and serializes every action
// against it, including the turn timer firing. One Engine hosts one game at
// a time; a finished game auto-resets to Idle and a new /startgame opens the
// next lobby.
type Engine struct {
	mu       sync.Mutex
	rules    Rules
	notifier Notifier
	clock    *TurnClock

	gameID        string
	phase         Phase
	roster        []Player
	turnIndex     int
	currentPhrase string
	history       map[string]int

	// epoch of the currently armed timer; 0 means nothing is armed. A fire
	// delivering any other epoch is stale and dropped.
	armEpoch uint64
}

func NewEngine(rules Rules, notifier Notifier) *Engine {
	if rules.TurnTimeout <= 0 {
		rules.TurnTimeout = DefaultRules().TurnTimeout
	}
	if rules.ReuseLimit <= 0 {
		rules.ReuseLimit = DefaultRules().ReuseLimit
	}
	return &Engine{
		rules:    rules,
		notifier: notifier,
		clock:    NewTurnClock(),
		phase:    PhaseIdle,
		history:  make(map[string]int),
	}
}

// StartGame resets everything and opens a fresh lobby. Allowed from any
// phase; an in-progress game is abandoned and its timer retired.
func (e *Engine) StartGame() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	e.gameID = uuid.NewString()
	e.phase = PhaseLobby
	e.emit(Event{Type: EvGameStarted})
	return e.gameID
}

// Join adds a player to the lobby roster, preserving join order. A repeat
// join leaves the roster untouched and produces an AlreadyJoined notice.
func (e *Engine) Join(playerID int64, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLobby {
		return ErrWrongPhase
	}
	for _, p := range e.roster {
		if p.ID == playerID {
			e.emit(Event{Type: EvAlreadyJoined, PlayerID: playerID})
			return ErrAlreadyJoined
		}
	}
	e.roster = append(e.roster, Player{ID: playerID, Name: name, JoinedAt: time.Now().UTC()})
	e.emit(Event{Type: EvPlayerJoined, PlayerID: playerID, Count: len(e.roster)})
	return nil
}

// Begin closes the lobby and asks the first joiner for the opening phrase.
func (e *Engine) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if len(e.roster) < 2 {
		e.emit(Event{Type: EvNotEnoughPlayers, Count: len(e.roster)})
		return ErrNotEnoughPlayers
	}
	e.phase = PhaseAwaitingOpening
	e.turnIndex = 0
	e.armLocked()
	e.emit(Event{Type: EvTurnPrompt, PlayerID: e.roster[e.turnIndex].ID})
	return nil
}

// Submit processes the current player's phrase. Input from anyone else, or
// outside a live game, is rejected without producing any event. A phrase
// that breaks a rule eliminates the submitter; a valid one advances the
// turn and re-arms the clock for the next player.
func (e *Engine) Submit(playerID int64, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseAwaitingOpening && e.phase != PhaseInProgress {
		return ErrWrongPhase
	}
	if e.roster[e.turnIndex].ID != playerID {
		return ErrNotYourTurn
	}

	phrase, err := Normalize(text)
	if err != nil {
		e.eliminateLocked(ReasonEmpty)
		return nil
	}
	if err := ValidateShape(phrase, e.rules.RequiredWordCount); err != nil {
		e.eliminateLocked(ReasonShape)
		return nil
	}

	if e.phase == PhaseAwaitingOpening {
		if err := ValidateOpening(phrase); err != nil {
			e.eliminateLocked(ReasonEmpty)
			return nil
		}
		e.currentPhrase = phrase
		e.history[phrase] = 1
		e.turnIndex = (e.turnIndex + 1) % len(e.roster)
		e.phase = PhaseInProgress
		e.armLocked()
		e.emit(Event{
			Type:     EvTurnPrompt,
			PlayerID: e.roster[e.turnIndex].ID,
			Phrase:   phrase,
			LinkWord: LinkKey(phrase),
		})
		return nil
	}

	if err := ValidateContinuation(e.currentPhrase, phrase); err != nil {
		e.eliminateLocked(ReasonMismatch)
		return nil
	}
	if err := ValidateNovelty(e.history, phrase, e.rules.ReuseLimit); err != nil {
		e.eliminateLocked(ReasonOveruse)
		return nil
	}

	e.history[phrase]++
	e.currentPhrase = phrase
	e.turnIndex = (e.turnIndex + 1) % len(e.roster)
	e.armLocked()
	e.emit(Event{
		Type:     EvTurnAccepted,
		PlayerID: e.roster[e.turnIndex].ID,
		Phrase:   phrase,
		LinkWord: LinkKey(phrase),
	})
	return nil
}

// onTimeout is the TurnClock callback. A firing timer is the current player
// submitting nothing; it takes the same elimination path as a rule failure,
// after proving it is not a stale fire from a superseded turn.
func (e *Engine) onTimeout(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.armEpoch {
		return
	}
	if e.phase != PhaseAwaitingOpening && e.phase != PhaseInProgress {
		return
	}
	e.eliminateLocked(ReasonTimeout)
}

// eliminateLocked removes the current player and either crowns a winner or
// hands the turn to the next player. Caller holds e.mu.
func (e *Engine) eliminateLocked(reason Reason) {
	out := e.roster[e.turnIndex]
	e.roster = append(e.roster[:e.turnIndex], e.roster[e.turnIndex+1:]...)
	if e.turnIndex >= len(e.roster) {
		e.turnIndex = 0
	}
	e.emit(Event{Type: EvPlayerEliminated, PlayerID: out.ID, Reason: reason})

	if len(e.roster) == 1 {
		winner := e.roster[0]
		e.phase = PhaseFinished
		e.clock.Cancel()
		e.armEpoch = 0
		e.emit(Event{Type: EvWinnerDeclared, PlayerID: winner.ID})
		// reset right away; the next /startgame opens a clean lobby
		e.resetLocked()
		return
	}

	e.armLocked()
	e.emit(Event{Type: EvPlayersRemaining, Count: len(e.roster)})
}

func (e *Engine) armLocked() {
	e.armEpoch = e.clock.Arm(e.rules.TurnTimeout, e.onTimeout)
}

func (e *Engine) resetLocked() {
	e.clock.Cancel()
	e.armEpoch = 0
	e.phase = PhaseIdle
	e.roster = nil
	e.turnIndex = 0
	e.currentPhrase = ""
	e.history = make(map[string]int)
}

func (e *Engine) emit(ev Event) {
	if e.notifier == nil {
		return
	}
	ev.GameID = e.gameID
	e.notifier.Notify(ev)
}

// Phase reports the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// GameID reports the ID of the current (or most recent) game.
func (e *Engine) GameID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameID
}

// Players returns a snapshot of the roster in join order.
func (e *Engine) Players() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Player, len(e.roster))
	copy(out, e.roster)
	return out
}

// CurrentPhrase returns the last accepted phrase, empty before the opening.
func (e *Engine) CurrentPhrase() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPhrase
}

// CurrentPlayer reports whose turn it is; ok is false outside a live game.
func (e *Engine) CurrentPlayer() (Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseAwaitingOpening && e.phase != PhaseInProgress {
		return Player{}, false
	}
	return e.roster[e.turnIndex], true
}

// Live reports whether a game is accepting phrase submissions.
func (e *Engine) Live() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseAwaitingOpening || e.phase == PhaseInProgress
}
