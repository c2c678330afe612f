package domain

import "errors"

var (
	// ErrNotConnected is returned when an emit is attempted without a live socket.
	ErrNotConnected = errors.New("socket not connected")
	// ErrTimeout indicates a request/reply exchange got no reply in time.
	ErrTimeout = errors.New("request timed out")
	// ErrRejected indicates the server answered with an error event.
	ErrRejected = errors.New("request rejected by server")
	// ErrNotLoggedIn is returned when no usable bearer token is cached.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrSessionClosed is returned when acting on a session that was torn down.
	ErrSessionClosed = errors.New("session closed")
)

// User-facing messages. The product is Spanish-speaking.
const (
	MsgJoinTimeout   = "Tiempo de espera agotado"
	MsgJoinFailed    = "No se pudo unir a la sala"
	MsgDisconnected  = "Desconectado"
	MsgCodeRequired  = "Código requerido"
	MsgRequestFailed = "Ocurrió un error, intenta de nuevo"
)
