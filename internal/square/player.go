package square

import "github.com/rocketscienceinc/square-backend/internal/entity"

// Player is one side of a match: a mark plus the set of cells it occupies.
type Player struct {
	mark     string
	occupied map[entity.Position]struct{}
}

func newPlayer(mark string) *Player {
	return &Player{
		mark:     mark,
		occupied: make(map[entity.Position]struct{}),
	}
}

func (that *Player) Mark() string {
	return that.mark
}

func (that *Player) Has(pos entity.Position) bool {
	_, ok := that.occupied[pos]
	return ok
}

func (that *Player) Count() int {
	return len(that.occupied)
}

// Positions returns the occupied cells, row-major.
func (that *Player) Positions() []entity.Position {
	positions := make([]entity.Position, 0, len(that.occupied))
	for pos := range that.occupied {
		positions = append(positions, pos)
	}

	entity.SortPositions(positions)

	return positions
}

func (that *Player) ownsAll(positions []entity.Position) bool {
	for _, pos := range positions {
		if !that.Has(pos) {
			return false
		}
	}
	return true
}

func (that *Player) add(pos entity.Position) {
	that.occupied[pos] = struct{}{}
}

func (that *Player) remove(pos entity.Position) {
	delete(that.occupied, pos)
}

func (that *Player) clear() {
	clear(that.occupied)
}
