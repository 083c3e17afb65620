package entity

const (
	MarkWhite = "W"
	MarkBlack = "B"
)

// Player is a connected participant; Mark and GameID are set while seated in a match.
type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}

// OtherMark returns the opposing side's mark.
func OtherMark(mark string) string {
	if mark == MarkWhite {
		return MarkBlack
	}
	return MarkWhite
}
