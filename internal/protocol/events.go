// Package protocol names the Socket.IO events the backend speaks and decodes
// their payloads into domain values. The backend owns the protocol; decoders
// are lenient about the field aliases it has used over time.
package protocol

// Inbound events.
const (
	RoomUpdate       = "room-update"
	NewQuestion      = "new-question"
	RoundResult      = "round-result"
	RoundFinished    = "round-finished"
	GameOver         = "game-over"
	AnswerReceived   = "answer-received"
	Error            = "error"
	AllForAllUpdate  = "allforall-update"
	StartAllForAll   = "start-all-for-all"
	PlayersUpdate    = "playersUpdate"
	SubjectsList     = "subjects-list"
	SubjectCreatedOK = "subject-created-success"
	RoomCreated      = "room-created"
)

// Outbound events.
const (
	JoinRoom            = "join-room"
	SubmitAnswer        = "submit-answer"
	CreateRoom          = "create-room"
	StartQuestion       = "start-question"
	TimeUp              = "time-up"
	EndBattle           = "end-battle"
	CreateFullSubject   = "create-full-subject"
	GetMySubjects       = "get-my-subjects"
	OpenAllForAllRoom   = "open-allforall-room"
	AllForAllStartRound = "allforall-start-round"
	CreateGame          = "create_game"
	ResetGame           = "resetGame"
	JoinGame            = "joinGame"
)
