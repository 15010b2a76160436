package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveSelector_Select(t *testing.T) {
	t.Run("empty square clears", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		res := sel.Select("e4")
		assert.Equal(t, SelectCleared, res.Action)
	})

	t.Run("own piece becomes source", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		res := sel.Select("e2")
		assert.Equal(t, SelectSource, res.Action)
		assert.ElementsMatch(t, []string{"e3", "e4"}, res.Targets)
	})

	t.Run("reselecting the source deselects", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		sel.Select("e2")
		res := sel.Select("e2")
		assert.Equal(t, SelectCleared, res.Action)
	})

	t.Run("legal destination completes the move", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		sel.Select("e2")
		res := sel.Select("e4")
		assert.Equal(t, SelectMove, res.Action)
		assert.Equal(t, Move{From: "e2", To: "e4"}, res.Move)

		// selector is idle again
		res = sel.Select("g1")
		assert.Equal(t, SelectSource, res.Action)
	})

	t.Run("illegal destination restarts from clicked square", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		sel.Select("e2")
		res := sel.Select("d2")
		assert.Equal(t, SelectSource, res.Action, "clicked square has moves, selection restarts there")
		assert.ElementsMatch(t, []string{"d3", "d4"}, res.Targets)
	})

	t.Run("illegal destination without moves clears", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		sel.Select("e2")
		res := sel.Select("d7")
		assert.Equal(t, SelectCleared, res.Action, "opponent piece cannot start a selection")
	})
}

func TestMoveSelector_Promotion(t *testing.T) {
	newPromotionSelector := func(t *testing.T) *MoveSelector {
		t.Helper()
		e := NewEngine()
		if err := e.Load("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
			t.Fatalf("load position: %v", err)
		}
		return NewMoveSelector(e)
	}

	t.Run("promotion move pends a piece choice", func(t *testing.T) {
		sel := newPromotionSelector(t)

		res := sel.Select("a7")
		assert.Equal(t, SelectSource, res.Action)
		assert.Contains(t, res.Targets, "a8")

		res = sel.Select("a8")
		assert.Equal(t, SelectPromotion, res.Action)
		assert.Equal(t, Move{From: "a7", To: "a8"}, res.Move)
		assert.True(t, sel.AwaitingPromotion())

		// square clicks are ignored while the choice is open
		res = sel.Select("e1")
		assert.Equal(t, SelectPromotion, res.Action)
		assert.True(t, sel.AwaitingPromotion())

		mv, ok := sel.Promote("q")
		assert.True(t, ok)
		assert.Equal(t, Move{From: "a7", To: "a8", Promotion: "q"}, mv)
		assert.False(t, sel.AwaitingPromotion())
	})

	t.Run("cancel abandons the promotion", func(t *testing.T) {
		sel := newPromotionSelector(t)

		sel.Select("a7")
		sel.Select("a8")
		assert.True(t, sel.AwaitingPromotion())

		sel.Cancel()
		assert.False(t, sel.AwaitingPromotion())

		_, ok := sel.Promote("q")
		assert.False(t, ok, "expected no move after cancel")
	})

	t.Run("promote without pending promotion", func(t *testing.T) {
		sel := NewMoveSelector(NewEngine())

		_, ok := sel.Promote("q")
		assert.False(t, ok)
	})
}

func TestMoveSelector_matchesDirectpath(t *testing.T) {
	// driving the same move sequence through square clicks yields the
	// same position as applying the moves directly
	clickEngine := NewEngine()
	directEngine := NewEngine()
	sel := NewMoveSelector(clickEngine)

	moves := []Move{
		{From: "e2", To: "e4"},
		{From: "e7", To: "e5"},
		{From: "g1", To: "f3"},
		{From: "b8", To: "c6"},
	}

	for _, mv := range moves {
		res := sel.Select(mv.From)
		assert.Equalf(t, SelectSource, res.Action, "selecting %s", mv.From)

		res = sel.Select(mv.To)
		assert.Equalf(t, SelectMove, res.Action, "selecting %s", mv.To)
		assert.Equal(t, mv, res.Move)

		assert.NoError(t, clickEngine.ApplyMove(res.Move))
		assert.NoError(t, directEngine.ApplyMove(mv))
	}

	assert.Equal(t, directEngine.FEN(), clickEngine.FEN())
}

func TestMoveSelector_Reset(t *testing.T) {
	sel := NewMoveSelector(NewEngine())

	sel.Select("e2")
	sel.Reset()

	// a destination click after reset is treated as a fresh source click
	res := sel.Select("e4")
	assert.Equal(t, SelectCleared, res.Action)
}
