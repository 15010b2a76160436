package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	whitePromotionFEN = "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"
	blackPromotionFEN = "4k3/8/8/8/8/8/p7/4K3 b - - 0 1"
	stalemateFEN      = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

func TestSideToMoveFromFEN(t *testing.T) {
	tcases := []struct {
		name     string
		fen      string
		expected string
	}{
		{
			name:     "white to move",
			fen:      StartingFEN,
			expected: ColorWhite,
		},
		{
			name:     "black to move",
			fen:      blackPromotionFEN,
			expected: ColorBlack,
		},
		{
			name:     "malformed fen defaults to white",
			fen:      "garbage",
			expected: ColorWhite,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SideToMoveFromFEN(tc.fen))
		})
	}
}

func TestOpponentColor(t *testing.T) {
	assert.Equal(t, ColorBlack, OpponentColor(ColorWhite))
	assert.Equal(t, ColorWhite, OpponentColor(ColorBlack))
}

func TestEngine_Load(t *testing.T) {
	e := NewEngine()

	err := e.Load(whitePromotionFEN)
	assert.NoError(t, err)
	assert.Equal(t, whitePromotionFEN, e.FEN())

	err = e.Load("not a position")
	assert.Error(t, err, "expected error loading malformed fen")
}

func TestEngine_SideToMove(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, ColorWhite, e.SideToMove())

	err := e.ApplyMove(Move{From: "e2", To: "e4"})
	assert.NoError(t, err)
	assert.Equal(t, ColorBlack, e.SideToMove())
}

func TestEngine_LegalTargets(t *testing.T) {
	e := NewEngine()

	targets := e.LegalTargets("e2")
	assert.ElementsMatch(t, []string{"e3", "e4"}, targets)

	assert.Empty(t, e.LegalTargets("e4"), "expected no targets for empty square")
	assert.Empty(t, e.LegalTargets("e7"), "expected no targets for opponent piece")
}

func TestEngine_HasLegalMove(t *testing.T) {
	e := NewEngine()

	assert.True(t, e.HasLegalMove("e2", "e4"))
	assert.True(t, e.HasLegalMove("g1", "f3"))
	assert.False(t, e.HasLegalMove("e2", "e5"))
	assert.False(t, e.HasLegalMove("e7", "e5"), "opponent pieces have no moves")
}

func TestEngine_RequiresPromotion(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.RequiresPromotion("e2", "e4"))

	err := e.Load(whitePromotionFEN)
	assert.NoError(t, err)
	assert.True(t, e.RequiresPromotion("a7", "a8"))

	err = e.Load(blackPromotionFEN)
	assert.NoError(t, err)
	assert.True(t, e.RequiresPromotion("a2", "a1"))
}

func TestEngine_ApplyMove(t *testing.T) {
	t.Run("legal move", func(t *testing.T) {
		e := NewEngine()
		err := e.ApplyMove(Move{From: "e2", To: "e4"})
		assert.NoError(t, err)
		assert.NotEqual(t, StartingFEN, e.FEN())
		assert.Equal(t, ColorBlack, e.SideToMove())
	})

	t.Run("illegal move leaves position unchanged", func(t *testing.T) {
		e := NewEngine()
		err := e.ApplyMove(Move{From: "e2", To: "e5"})
		assert.Error(t, err)
		assert.Equal(t, StartingFEN, e.FEN())
		assert.Equal(t, ColorWhite, e.SideToMove())
	})

	t.Run("promotion requires a piece", func(t *testing.T) {
		e := NewEngine()
		err := e.Load(whitePromotionFEN)
		assert.NoError(t, err)

		err = e.ApplyMove(Move{From: "a7", To: "a8"})
		assert.Error(t, err, "expected promotion without a piece to be rejected")

		err = e.ApplyMove(Move{From: "a7", To: "a8", Promotion: "q"})
		assert.NoError(t, err)
		assert.Equal(t, ColorBlack, e.SideToMove())
	})

	t.Run("black promotion", func(t *testing.T) {
		e := NewEngine()
		err := e.Load(blackPromotionFEN)
		assert.NoError(t, err)

		err = e.ApplyMove(Move{From: "a2", To: "a1", Promotion: "n"})
		assert.NoError(t, err)
		assert.Equal(t, ColorWhite, e.SideToMove())
	})
}

func TestEngine_GameOver(t *testing.T) {
	t.Run("checkmate", func(t *testing.T) {
		e := NewEngine()

		moves := []Move{
			{From: "f2", To: "f3"},
			{From: "e7", To: "e5"},
			{From: "g2", To: "g4"},
			{From: "d8", To: "h4"},
		}
		for _, mv := range moves {
			err := e.ApplyMove(mv)
			assert.NoErrorf(t, err, "move %s%s", mv.From, mv.To)
		}

		assert.True(t, e.GameOver(), "expected game over after mate")
	})

	t.Run("stalemate", func(t *testing.T) {
		e := NewEngine()
		err := e.Load(stalemateFEN)
		assert.NoError(t, err)
		assert.True(t, e.GameOver(), "expected stalemate to end the game")
	})

	t.Run("ongoing game", func(t *testing.T) {
		e := NewEngine()
		assert.False(t, e.GameOver())
	})
}
