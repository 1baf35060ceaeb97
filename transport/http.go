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

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/hector/server"
)

// NewHTTPHandler wires the admin request/response endpoint, the
// WebSocket upgrade endpoint, and the GraphQL pull endpoint onto one
// gorilla/mux router, wrapped in gorilla/handlers access logging.
func NewHTTPHandler(s *server.Server, log *logrus.Entry) http.Handler {
	router := mux.NewRouter()
	router.Handle("/ws", NewWSHandler(s, log))
	router.HandleFunc("/admin", adminHandler(s)).Methods(http.MethodPost)
	router.HandleFunc("/graphql", graphQLHandler(s)).Methods(http.MethodPost)
	router.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)

	return handlers.LoggingHandler(log.Logger.Out, router)
}

// adminHandler runs one Request/Result round trip per POST body,
// using the request's remote address as its Interest token (so a
// plain HTTP client can Interest/Uninterest across separate calls as
// long as it keeps hitting the server from the same address).
func adminHandler(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		var result Result
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			result = errorResult(err, s.Now())
		} else {
			result = Dispatch(s, r.RemoteAddr, req)
		}
		writeJSON(w, result)
	}
}

// graphQLHandler parses the request body's GraphQL query into a
// single-level pull and runs it through Server.Pull.
func graphQLHandler(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, errorResult(err, s.Now()))
			return
		}
		compiled, err := compileGraphQLQuery(body.Query)
		if err != nil {
			writeJSON(w, errorResult(err, s.Now()))
			return
		}
		tuples, err := s.Pull(compiled.Root, compiled.Attrs)
		if err != nil {
			writeJSON(w, errorResult(err, s.Now()))
			return
		}
		rows := make([]ResultRow, len(tuples))
		for i, tup := range tuples {
			wire := make([]WireValue, len(tup))
			for j, v := range tup {
				wire[j] = WireValue{v}
			}
			rows[i] = ResultRow{Tuple: wire, Time: int64(s.Now()), Diff: 1}
		}
		writeJSON(w, Result{Name: compiled.Root, Rows: rows})
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
