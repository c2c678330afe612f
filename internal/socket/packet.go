package socket

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Engine.IO v4 packet types.
const (
	eioOpen    byte = '0'
	eioClose   byte = '1'
	eioPing    byte = '2'
	eioPong    byte = '3'
	eioMessage byte = '4'
)

// Socket.IO v5 packet types, carried inside an Engine.IO message.
const (
	sioConnect      byte = '0'
	sioDisconnect   byte = '1'
	sioEvent        byte = '2'
	sioAck          byte = '3'
	sioConnectError byte = '4'
)

var errMalformed = errors.New("malformed packet")

// handshake is the payload of the Engine.IO open packet.
type handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// packet is a decoded frame. Socket.IO fields are set only for messages.
type packet struct {
	engine    byte
	kind      byte
	namespace string
	ackID     int
	event     string
	data      json.RawMessage
}

func encodeConnect(auth any) ([]byte, error) {
	frame := []byte{eioMessage, sioConnect}
	if auth == nil {
		return frame, nil
	}
	raw, err := json.Marshal(auth)
	if err != nil {
		return nil, errors.Wrap(err, "encode connect auth")
	}
	return append(frame, raw...), nil
}

func encodeEvent(event string, payload any) ([]byte, error) {
	args := []any{event}
	if payload != nil {
		args = append(args, payload)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrapf(err, "encode event %s", event)
	}
	return append([]byte{eioMessage, sioEvent}, raw...), nil
}

func encodeDisconnect() []byte {
	return []byte{eioMessage, sioDisconnect}
}

func decode(frame []byte) (packet, error) {
	if len(frame) == 0 {
		return packet{}, errMalformed
	}
	p := packet{engine: frame[0], ackID: -1}
	body := frame[1:]
	if p.engine != eioMessage {
		p.data = body
		return p, nil
	}
	if len(body) == 0 {
		return packet{}, errMalformed
	}
	p.kind = body[0]
	body = body[1:]

	if len(body) > 0 && body[0] == '/' {
		end := bytes.IndexByte(body, ',')
		if end < 0 {
			p.namespace = string(body)
			return p, nil
		}
		p.namespace = string(body[:end])
		body = body[end+1:]
	}

	digits := 0
	for digits < len(body) && body[digits] >= '0' && body[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(string(body[:digits]))
		if err != nil {
			return packet{}, errMalformed
		}
		p.ackID = id
		body = body[digits:]
	}

	if p.kind != sioEvent && p.kind != sioAck {
		p.data = body
		return p, nil
	}

	var args []json.RawMessage
	if err := json.Unmarshal(body, &args); err != nil {
		return packet{}, errors.Wrap(errMalformed, err.Error())
	}
	if p.kind == sioEvent {
		if len(args) == 0 {
			return packet{}, errMalformed
		}
		if err := json.Unmarshal(args[0], &p.event); err != nil {
			return packet{}, errors.Wrap(errMalformed, "event name")
		}
		args = args[1:]
	}
	if len(args) > 0 {
		p.data = args[0]
	}
	return p, nil
}
