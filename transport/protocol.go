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

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/rules"
	"github.com/dolthub/hector/server"
	"github.com/dolthub/hector/value"
)

// DatomWire is one [diff, eid, aid, value] row of a Transact request's
// tx_data, encoded as a 4-element JSON array rather than an object.
type DatomWire domain.Datom

func (d DatomWire) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]interface{}{
		int64(d.Diff), WireValue{d.Eid}, string(d.Aid), WireValue{d.Val},
	})
}

func (d *DatomWire) UnmarshalJSON(data []byte) error {
	var row [4]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	var diff int64
	if err := json.Unmarshal(row[0], &diff); err != nil {
		return err
	}
	var eid, val WireValue
	if err := json.Unmarshal(row[1], &eid); err != nil {
		return err
	}
	var aid string
	if err := json.Unmarshal(row[2], &aid); err != nil {
		return err
	}
	if err := json.Unmarshal(row[3], &val); err != nil {
		return err
	}
	*d = DatomWire{Diff: clock.Diff(diff), Eid: eid.Value, Aid: value.Aid(aid), Val: val.Value}
	return nil
}

// Request is the JSON tagged-union front door spec.md §6 describes:
// exactly one field is populated per frame element.
type Request struct {
	Transact        *TransactRequest        `json:"Transact,omitempty"`
	Interest        *InterestRequest        `json:"Interest,omitempty"`
	Uninterest      *string                 `json:"Uninterest,omitempty"`
	Register        *RegisterRequest        `json:"Register,omitempty"`
	CreateAttribute *CreateAttributeRequest `json:"CreateAttribute,omitempty"`
	AdvanceDomain   *AdvanceDomainRequest   `json:"AdvanceDomain,omitempty"`
	CloseInput      *string                 `json:"CloseInput,omitempty"`
	Flow            *FlowRequest            `json:"Flow,omitempty"`
}

type TransactRequest struct {
	TxData []DatomWire `json:"tx_data"`
}

type InterestRequest struct {
	Name string `json:"name"`
}

type RegisterRequest struct {
	Name string    `json:"name"`
	Vars []value.Var `json:"vars"`
	Plan *PlanNode `json:"plan"`
}

type CreateAttributeRequest struct {
	Name      string `json:"name"`
	Semantics string `json:"semantics"`
}

type AdvanceDomainRequest struct {
	Name *string `json:"name,omitempty"`
	T    int64   `json:"t"`
}

type FlowRequest struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// Result is the response frame, encoded as a JSON object:
// `{"name", "rows": [{"tuple", "time", "diff"}, …]}` on success, or
// `{"name": "df.error", "error": {category, message}}` on failure. It
// is not the positional `[name, rows]` array form, and error frames
// carry no time.
type Result struct {
	Name  string          `json:"name"`
	Rows  []ResultRow     `json:"rows,omitempty"`
	Error *dferrors.WireFrame `json:"error,omitempty"`
}

type ResultRow struct {
	Tuple []WireValue `json:"tuple"`
	Time  int64       `json:"time"`
	Diff  int64       `json:"diff"`
}

func errorResult(err error, t clock.Time) Result {
	frame, _ := dferrors.ToWireFrame(err, int64(t))
	return Result{Name: "df.error", Error: &frame}
}

func parseSemantics(s string) (domain.InputSemantics, error) {
	switch s {
	case "Raw":
		return domain.Raw, nil
	case "CardinalityMany":
		return domain.CardinalityMany, nil
	case "CardinalityOne":
		return domain.CardinalityOne, nil
	default:
		return 0, dferrors.ErrCardinalityUnknown.New(s)
	}
}

// Dispatch applies req against s on behalf of token, returning the
// wire result frame. token is the client identity used to key
// Interest/Uninterest's interest sets; it plays no role for the other
// administrative operations.
func Dispatch(s *server.Server, token string, req Request) Result {
	now := s.Now
	switch {
	case req.Transact != nil:
		datoms := make([]domain.Datom, len(req.Transact.TxData))
		for i, d := range req.Transact.TxData {
			datoms[i] = domain.Datom(d)
		}
		if err := s.Transact(datoms); err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "Transact"}

	case req.Interest != nil:
		tuples, err := s.Interest(token, req.Interest.Name)
		if err != nil {
			return errorResult(err, now())
		}
		rows := make([]ResultRow, len(tuples))
		for i, tup := range tuples {
			wire := make([]WireValue, len(tup))
			for j, v := range tup {
				wire[j] = WireValue{v}
			}
			rows[i] = ResultRow{Tuple: wire, Time: 0, Diff: 1}
		}
		return Result{Name: req.Interest.Name, Rows: rows}

	case req.Uninterest != nil:
		if err := s.Uninterest(token, *req.Uninterest); err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "Uninterest"}

	case req.Register != nil:
		p, err := DecodePlan(req.Register.Plan)
		if err != nil {
			return errorResult(err, now())
		}
		err = s.Register(rules.Rule{
			Name: req.Register.Name,
			Vars: value.VarList(req.Register.Vars),
			Plan: p,
		})
		if err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "Register"}

	case req.CreateAttribute != nil:
		semantics, err := parseSemantics(req.CreateAttribute.Semantics)
		if err != nil {
			return errorResult(err, now())
		}
		err = s.CreateAttribute(value.Aid(req.CreateAttribute.Name), domain.Config{InputSemantics: semantics})
		if err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "CreateAttribute"}

	case req.AdvanceDomain != nil:
		if err := s.AdvanceDomain(clock.Time(req.AdvanceDomain.T)); err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "AdvanceDomain"}

	case req.CloseInput != nil:
		if err := s.CloseInput(value.Aid(*req.CloseInput)); err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "CloseInput"}

	case req.Flow != nil:
		if err := s.Flow(req.Flow.Source, value.Aid(req.Flow.Dest)); err != nil {
			return errorResult(err, now())
		}
		return Result{Name: "Flow"}

	default:
		return errorResult(dferrors.ErrMalformedRequest.New("empty request frame"), now())
	}
}
