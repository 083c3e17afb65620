package square

import "github.com/rocketscienceinc/square-backend/internal/entity"

type direction struct {
	dr, dc int
}

// cornerRoles lists the anchor's role in a candidate square, in search order.
// Rows grow downwards, so a top-left anchor has its square below and to the right.
var cornerRoles = [4]direction{
	{dr: 1, dc: 1},   // top-left
	{dr: 1, dc: -1},  // top-right
	{dr: -1, dc: 1},  // bottom-left
	{dr: -1, dc: -1}, // bottom-right
}

// compass lists the capture scan directions: N, S, E, W, NE, NW, SE, SW.
var compass = [8]direction{
	{dr: -1, dc: 0},
	{dr: 1, dc: 0},
	{dr: 0, dc: 1},
	{dr: 0, dc: -1},
	{dr: -1, dc: 1},
	{dr: -1, dc: -1},
	{dr: 1, dc: 1},
	{dr: 1, dc: -1},
}

// findSquare returns the first square with a corner at anchor whose four
// corners all belong to owner, or nil. Squares are tried by increasing side
// length, then by corner role. Corners come back as anchor, the corner in the
// anchor's row, the corner in the anchor's column, then the opposite corner.
func (that *Engine) findSquare(anchor entity.Position, owner *Player) []entity.Position {
	for side := 1; side < that.size; side++ {
		for _, role := range cornerRoles {
			opposite := anchor.Offset(role.dr*side, role.dc*side)
			if !that.inBounds(opposite) {
				continue
			}

			corners := []entity.Position{
				anchor,
				anchor.Offset(0, role.dc*side),
				anchor.Offset(role.dr*side, 0),
				opposite,
			}

			if owner.ownsAll(corners) {
				return corners
			}
		}
	}

	return nil
}

// capture removes every opponent run bracketed between anchor and another
// mover piece, checking each compass direction on its own. Captured cells are
// returned per direction, nearest first.
func (that *Engine) capture(anchor entity.Position, mover, opponent *Player) []entity.Position {
	captured := []entity.Position{}

	for _, dir := range compass {
		run := that.bracketedRun(anchor, dir, mover, opponent)
		for _, pos := range run {
			opponent.remove(pos)
		}
		captured = append(captured, run...)
	}

	return captured
}

func (that *Engine) bracketedRun(anchor entity.Position, dir direction, mover, opponent *Player) []entity.Position {
	var run []entity.Position

	pos := anchor.Offset(dir.dr, dir.dc)
	for that.inBounds(pos) && opponent.Has(pos) {
		run = append(run, pos)
		pos = pos.Offset(dir.dr, dir.dc)
	}

	if len(run) == 0 || !that.inBounds(pos) || !mover.Has(pos) {
		return nil
	}

	return run
}
