package live

import (
	"encoding/json"
	"net/http"

	"HeatExchange/internal/calc/exchanger"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	MsgCalc   = "calc"
	MsgResult = "result"
	MsgError  = "error"
)

// Msg is the frame exchanged over the socket in both directions.
type Msg struct {
	Type       string            `json:"type"`
	Parameters json.RawMessage   `json:"parameters,omitempty"`
	Result     *exchanger.Result `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Server recomputes the profile for every parameter set a client sends,
// without saving anything.
type Server struct {
	Upgrader websocket.Upgrader
	Defaults exchanger.Parameters
}

func NewServer(defaults exchanger.Parameters) *Server {
	return &Server{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Defaults: defaults,
	}
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket read")
			}
			return
		}
		if err := conn.WriteJSON(s.handle(msg)); err != nil {
			log.WithError(err).Debug("websocket write")
			return
		}
	}
}

func (s *Server) handle(msg Msg) Msg {
	if msg.Type != MsgCalc {
		return Msg{Type: MsgError, Error: "no such type: " + msg.Type}
	}
	p := s.Defaults
	if len(msg.Parameters) > 0 {
		if err := json.Unmarshal(msg.Parameters, &p); err != nil {
			return Msg{Type: MsgError, Error: "invalid parameters"}
		}
	}
	res, err := exchanger.Calculate(p)
	if err != nil {
		return Msg{Type: MsgError, Error: err.Error()}
	}
	if !res.Finite() {
		return Msg{Type: MsgError, Error: exchanger.ErrNonFinite.Error()}
	}
	return Msg{Type: MsgResult, Result: &res}
}
