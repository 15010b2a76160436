package game

import (
	"github.com/npezzotti/go-chessroom/internal/chess"
	"github.com/npezzotti/go-chessroom/internal/database"
)

// playerColor returns the color assigned to the account in the room. The
// creator holds creator_color, the opponent its complement; everyone else,
// including anonymous viewers, has no color.
func playerColor(rm database.Room, accountId int) (string, bool) {
	if accountId == 0 {
		return "", false
	}

	if rm.CreatorId == accountId {
		return rm.CreatorColor, true
	}

	if rm.OpponentId.Valid && int(rm.OpponentId.Int64) == accountId {
		return chess.OpponentColor(rm.CreatorColor), true
	}

	return "", false
}

// mayMove reports whether the account may submit a move for the room right
// now: it must hold a color and that color must match the side to move.
// Pure function of its arguments.
func mayMove(rm database.Room, sideToMove string, accountId int) bool {
	color, ok := playerColor(rm, accountId)
	return ok && color == sideToMove
}
