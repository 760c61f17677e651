package wsconsole

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// ServerHandler returns an http.HandlerFunc that serves the websocket
// console side of the protocol, backed by the given command handler. Used
// by the mock world daemon and the package tests.
func ServerHandler(password string, handle func(command string) string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  16 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		write := func(f frame) bool {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			return conn.WriteJSON(f) == nil
		}

		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var auth frame
		if err := conn.ReadJSON(&auth); err != nil || auth.Type != typeAuth {
			return
		}
		if auth.Password != password {
			_ = write(frame{Type: typeAuthFail})
			return
		}
		if !write(frame{Type: typeAuthOK}) {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			var req frame
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Type != typeCmd {
				continue
			}
			if !write(frame{Type: typeOut, Out: handle(req.Cmd)}) {
				return
			}
		}
	}
}
