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
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/hector/server"
)

// TCPServer accepts newline-delimited JSON Request frames on raw TCP
// connections and writes back newline-delimited Result frames, one
// connection per client token (the remote address doubles as the
// Interest token for that connection's lifetime).
type TCPServer struct {
	dispatch *server.Server
	log      *logrus.Entry

	mu       sync.Mutex
	listener net.Listener
	shutdown bool

	activeConns int32
}

// NewTCPServer returns a TCPServer dispatching requests against s.
func NewTCPServer(s *server.Server, log *logrus.Entry) *TCPServer {
	return &TCPServer{dispatch: s, log: log}
}

// Serve binds addr and accepts connections until Close is called.
func (t *TCPServer) Serve(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: tcp listen %s: %w", addr, err)
	}

	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			t.mu.Lock()
			shutdown := t.shutdown
			t.mu.Unlock()
			if shutdown {
				return nil
			}
			return fmt.Errorf("transport: accept: %w", err)
		}

		atomic.AddInt32(&t.activeConns, 1)
		go func(c net.Conn) {
			defer atomic.AddInt32(&t.activeConns, -1)
			t.handleConnection(c)
		}(conn)
	}
}

// ActiveConnections reports how many client connections are currently
// being served.
func (t *TCPServer) ActiveConnections() int32 {
	return atomic.LoadInt32(&t.activeConns)
}

// Close stops accepting new connections. In-flight connections run to
// completion on their own.
func (t *TCPServer) Close() error {
	t.mu.Lock()
	t.shutdown = true
	listener := t.listener
	t.mu.Unlock()
	if listener == nil {
		return nil
	}
	return listener.Close()
}

func (t *TCPServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	token := conn.RemoteAddr().String()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return
		}

		var req Request
		var result Result
		if jsonErr := json.Unmarshal(line, &req); jsonErr != nil {
			result = errorResult(fmt.Errorf("transport: %w", jsonErr), t.dispatch.Now())
		} else {
			result = Dispatch(t.dispatch, token, req)
		}

		if encodeErr := t.writeResult(writer, result); encodeErr != nil {
			t.log.WithError(encodeErr).Warn("transport: failed writing tcp response")
			return
		}
		if err != nil {
			return
		}
	}
}

func (t *TCPServer) writeResult(w *bufio.Writer, result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
