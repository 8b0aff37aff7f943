package futsal

type Team string

const (
	TeamOrange Team = "ORANGE"
	TeamBlack  Team = "BLACK"
)

// Opponent returns the other team color.
func (t Team) Opponent() Team {
	if t == TeamOrange {
		return TeamBlack
	}
	return TeamOrange
}

func (t Team) Valid() bool {
	return t == TeamOrange || t == TeamBlack
}

type Result string

const (
	ResultOrange Result = "ORANGE"
	ResultBlack  Result = "BLACK"
	ResultDraw   Result = "DRAW"
)

// Winner maps a decisive result to the winning team. ok is false for a draw.
func (r Result) Winner() (Team, bool) {
	switch r {
	case ResultOrange:
		return TeamOrange, true
	case ResultBlack:
		return TeamBlack, true
	}
	return "", false
}
