package chess

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// SideToMoveFromFEN reads the active color field of a FEN string without
// loading the full position.
func SideToMoveFromFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		return ColorBlack
	}
	return ColorWhite
}

// OpponentColor returns the complement of the given color.
func OpponentColor(color string) string {
	if color == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Move is a single move in coordinate form. Promotion is empty unless the
// move promotes a pawn, in which case it is one of "q", "r", "b", "n".
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Engine wraps the rules library behind the small surface the game server
// needs: load and serialize positions, enumerate legal moves, apply a move
// and report game-over status.
type Engine struct {
	game *chess.Game
}

func NewEngine() *Engine {
	return &Engine{game: chess.NewGame()}
}

// Load replaces the engine's position with the given FEN.
func (e *Engine) Load(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("parse fen: %w", err)
	}

	e.game = chess.NewGame(opt)
	return nil
}

// FEN serializes the current position.
func (e *Engine) FEN() string {
	return e.game.FEN()
}

// SideToMove returns "white" or "black".
func (e *Engine) SideToMove() string {
	if e.game.Position().Turn() == chess.White {
		return ColorWhite
	}
	return ColorBlack
}

// GameOver reports whether the position is terminal (checkmate, stalemate
// or a drawn position detected by the rules library).
func (e *Engine) GameOver() bool {
	return e.game.Outcome() != chess.NoOutcome
}

// LegalTargets returns the destination squares of every legal move from
// the given square. An empty slice means the square has no legal moves.
func (e *Engine) LegalTargets(from string) []string {
	var targets []string
	for _, m := range e.game.ValidMoves() {
		if m.S1().String() == from {
			targets = append(targets, m.S2().String())
		}
	}

	return targets
}

// HasLegalMove reports whether any legal move exists from one square to
// another, ignoring the promotion piece.
func (e *Engine) HasLegalMove(from, to string) bool {
	for _, m := range e.game.ValidMoves() {
		if m.S1().String() == from && m.S2().String() == to {
			return true
		}
	}

	return false
}

// RequiresPromotion reports whether the move from one square to another is
// a pawn promotion, which needs a piece choice before it can be applied.
func (e *Engine) RequiresPromotion(from, to string) bool {
	for _, m := range e.game.ValidMoves() {
		if m.S1().String() == from && m.S2().String() == to {
			return m.Promo() != chess.NoPieceType
		}
	}

	return false
}

// ApplyMove applies the move to the current position. It returns an error
// if the move is not legal in the current position, leaving the position
// unchanged.
func (e *Engine) ApplyMove(mv Move) error {
	promo := promoPieceType(mv.Promotion)
	for _, m := range e.game.ValidMoves() {
		if m.S1().String() != mv.From || m.S2().String() != mv.To {
			continue
		}

		if m.Promo() != promo {
			continue
		}

		return e.game.Move(m)
	}

	return fmt.Errorf("illegal move %s%s", mv.From, mv.To)
}

func promoPieceType(p string) chess.PieceType {
	switch strings.ToLower(p) {
	case "q":
		return chess.Queen
	case "r":
		return chess.Rook
	case "b":
		return chess.Bishop
	case "n":
		return chess.Knight
	default:
		return chess.NoPieceType
	}
}
