package web

// RoomPage is the spectator projection of a room rendered as HTML.
type RoomPage struct {
	RoomID      string
	GameType    string
	Phase       string
	Round       int
	Speaker     string
	Winner      string
	SecondsLeft int
	Players     []RoomPlayer
	Logs        []RoomLog
	Words       string
}

type RoomPlayer struct {
	Seat       int
	Name       string
	IsAI       bool
	Alive      bool
	Connection string
	Role       string
}

type RoomLog struct {
	Message string
	At      string
}
