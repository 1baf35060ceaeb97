// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/hector/server"
)

// upgrader allows any origin; the token that scopes a connection's
// Interest/Uninterest calls is the connection itself, not a cookie or
// header, so cross-origin access control lives at the reverse proxy.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP connections to WebSocket and runs the same
// Request/Result protocol TCPServer runs over raw sockets, one frame
// per WebSocket text message. Each connection is its own Interest
// token, keyed by its remote address.
type WSHandler struct {
	dispatch *server.Server
	log      *logrus.Entry
}

// NewWSHandler returns an http.Handler suitable for mounting on a
// gorilla/mux route.
func NewWSHandler(s *server.Server, log *logrus.Entry) *WSHandler {
	return &WSHandler{dispatch: s, log: log}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("transport: websocket upgrade failed")
		return
	}
	defer conn.Close()

	token := conn.RemoteAddr().String()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		var result Result
		if jsonErr := json.Unmarshal(data, &req); jsonErr != nil {
			result = errorResult(jsonErr, h.dispatch.Now())
		} else {
			result = Dispatch(h.dispatch, token, req)
		}

		out, err := json.Marshal(result)
		if err != nil {
			h.log.WithError(err).Error("transport: failed marshaling websocket result")
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}
	}
}
