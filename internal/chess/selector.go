package chess

// selectionState is the phase of a click-based move in progress.
type selectionState int

const (
	selIdle selectionState = iota
	selSourceSelected
	selAwaitingPromotion
)

// SelectAction tells the caller what a square selection produced.
type SelectAction int

const (
	// SelectCleared means no selection is active after the click.
	SelectCleared SelectAction = iota
	// SelectSource means a source square was selected; Targets holds the
	// legal destinations for highlighting.
	SelectSource
	// SelectMove means a complete, legal, non-promotion move is ready.
	SelectMove
	// SelectPromotion means a legal promotion move is pending a piece
	// choice.
	SelectPromotion
)

// SelectResult is the outcome of feeding one square to the selector.
type SelectResult struct {
	Action  SelectAction
	Move    Move
	Targets []string
}

// MoveSelector drives the two-step "select source, select destination,
// optionally choose a promotion piece" interaction against an Engine. It
// holds no position state of its own; legality is always judged against
// the engine's current position, so the selector must be reset whenever
// the position changes underneath it.
type MoveSelector struct {
	engine *Engine
	state  selectionState
	from   string
	to     string
}

func NewMoveSelector(e *Engine) *MoveSelector {
	return &MoveSelector{engine: e}
}

// Select feeds one clicked square to the selector and returns what should
// happen next. A SelectMove result carries the move to apply; the caller
// applies it and the selector is already back at idle. A SelectPromotion
// result means Promote or Cancel must be called before anything is applied.
func (s *MoveSelector) Select(square string) SelectResult {
	switch s.state {
	case selSourceSelected:
		return s.selectDestination(square)
	case selAwaitingPromotion:
		// square clicks are ignored while the promotion choice is open
		return SelectResult{Action: SelectPromotion, Move: Move{From: s.from, To: s.to}}
	default:
		return s.selectSource(square)
	}
}

func (s *MoveSelector) selectSource(square string) SelectResult {
	targets := s.engine.LegalTargets(square)
	if len(targets) == 0 {
		s.Reset()
		return SelectResult{Action: SelectCleared}
	}

	s.state = selSourceSelected
	s.from = square
	return SelectResult{Action: SelectSource, Targets: targets}
}

func (s *MoveSelector) selectDestination(square string) SelectResult {
	if square == s.from {
		// re-selecting the source deselects it
		s.Reset()
		return SelectResult{Action: SelectCleared}
	}

	if !s.engine.HasLegalMove(s.from, square) {
		// restart selection from the clicked square if it has moves,
		// otherwise clear
		return s.selectSource(square)
	}

	if s.engine.RequiresPromotion(s.from, square) {
		s.state = selAwaitingPromotion
		s.to = square
		return SelectResult{Action: SelectPromotion, Move: Move{From: s.from, To: square}}
	}

	mv := Move{From: s.from, To: square}
	s.Reset()
	return SelectResult{Action: SelectMove, Move: mv}
}

// Promote finalizes a pending promotion with the chosen piece. It returns
// false if no promotion is pending.
func (s *MoveSelector) Promote(piece string) (Move, bool) {
	if s.state != selAwaitingPromotion {
		return Move{}, false
	}

	mv := Move{From: s.from, To: s.to, Promotion: piece}
	s.Reset()
	return mv, true
}

// Cancel abandons any selection in progress.
func (s *MoveSelector) Cancel() {
	s.Reset()
}

// Reset returns the selector to idle. Callers must invoke it whenever the
// engine's position changes.
func (s *MoveSelector) Reset() {
	s.state = selIdle
	s.from = ""
	s.to = ""
}

// AwaitingPromotion reports whether a promotion choice is pending.
func (s *MoveSelector) AwaitingPromotion() bool {
	return s.state == selAwaitingPromotion
}
