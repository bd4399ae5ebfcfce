package model

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// fenLetter is the FEN side-to-move field.
func (c Color) fenLetter() string {
	if c == Black {
		return "b"
	}
	return "w"
}

type Controller string

const (
	ControllerHuman  Controller = "human"
	ControllerEngine Controller = "engine"
)

type ClientPlayer struct {
	Color      Color      `json:"color"`
	Controller Controller `json:"controller"`
	TimeUsed   int        `json:"timeUsed"` // tenths of a second
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// newPlayers seats the human on humanColor and the engine on the other side.
func newPlayers(humanColor Color) Players {
	players := Players{
		White: ClientPlayer{Color: White, Controller: ControllerEngine},
		Black: ClientPlayer{Color: Black, Controller: ControllerEngine},
	}
	if humanColor == Black {
		players.Black.Controller = ControllerHuman
	} else {
		players.White.Controller = ControllerHuman
	}
	return players
}
