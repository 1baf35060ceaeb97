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

// Package transport implements the TCP and WebSocket JSON-frame front
// end and the HTTP admin/GraphQL routes spec.md §6 describes: a JSON
// tagged-union request schema, and Result frames encoded as JSON
// objects carrying a name plus either (tuple, time, diff) rows or a
// "df.error" error record.
package transport

import (
	"encoding/json"
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/dolthub/hector/value"
)

// WireValue marshals and unmarshals one value.Value using the tagged
// single-key object form spec.md §6 names: {"Aid":…}, {"String":…},
// {"Bool":…}, {"Number":…}, {"Eid":…}, {"Rational":[num,den]},
// {"Instant":…}, {"UUID":…}, {"OperatorAddress":[...]}.
type WireValue struct {
	value.Value
}

func (w WireValue) MarshalJSON() ([]byte, error) {
	v := w.Value
	switch v.Kind() {
	case value.KindAid:
		return json.Marshal(map[string]string{"Aid": string(v.AsAid())})
	case value.KindString:
		return json.Marshal(map[string]string{"String": v.AsString()})
	case value.KindBool:
		return json.Marshal(map[string]bool{"Bool": v.AsBool()})
	case value.KindInt64:
		return json.Marshal(map[string]int64{"Number": v.AsInt64()})
	case value.KindRational:
		r := v.AsRational()
		return json.Marshal(map[string][2]int32{"Rational": {r.Num, r.Den}})
	case value.KindEid:
		e := v.AsEid()
		if e.Is64() {
			return json.Marshal(map[string]uint64{"Eid": e.Lo})
		}
		return json.Marshal(map[string][2]uint64{"Eid": {e.Hi, e.Lo}})
	case value.KindInstant:
		return json.Marshal(map[string]int64{"Instant": v.AsInstant()})
	case value.KindUUID:
		return json.Marshal(map[string]string{"UUID": v.AsUUID().String()})
	case value.KindOperatorAddress:
		return json.Marshal(map[string][]uint16{"OperatorAddress": v.AsOperatorAddress()})
	default:
		return nil, fmt.Errorf("transport: unsupported value kind %v", v.Kind())
	}
}

func (w *WireValue) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("transport: expected one tagged field, found %d", len(tagged))
	}
	for tag, raw := range tagged {
		switch tag {
		case "Aid":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			w.Value = value.NewAid(value.Aid(s))
		case "String":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			w.Value = value.NewString(s)
		case "Bool":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			w.Value = value.NewBool(b)
		case "Number":
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return err
			}
			w.Value = value.NewInt64(n)
		case "Rational":
			var parts [2]int32
			if err := json.Unmarshal(raw, &parts); err != nil {
				return err
			}
			w.Value = value.NewRational(parts[0], parts[1])
		case "Eid":
			var wide [2]uint64
			if err := json.Unmarshal(raw, &wide); err == nil {
				w.Value = value.NewEid(value.EidFromUint128(wide[0], wide[1]))
				continue
			}
			var narrow uint64
			if err := json.Unmarshal(raw, &narrow); err != nil {
				return err
			}
			w.Value = value.NewEid(value.EidFromUint64(narrow))
		case "Instant":
			var ms int64
			if err := json.Unmarshal(raw, &ms); err != nil {
				return err
			}
			w.Value = value.NewInstant(ms)
		case "UUID":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			id, err := uuid.FromString(s)
			if err != nil {
				return err
			}
			w.Value = value.NewUUID(id)
		case "OperatorAddress":
			var addr []uint16
			if err := json.Unmarshal(raw, &addr); err != nil {
				return err
			}
			w.Value = value.NewOperatorAddress(addr)
		default:
			return fmt.Errorf("transport: unrecognized value tag %q", tag)
		}
	}
	return nil
}
