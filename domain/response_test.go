// Copyright 2025 FluxHook Authors
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

package domain

import (
	"encoding/json"
	"testing"
)

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestResponseOKWireForm(t *testing.T) {
	got := mustMarshal(t, OK())
	want := `{"result":"ok"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResponseNextWireForm(t *testing.T) {
	got := mustMarshal(t, Next())
	want := `{"result":"next"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResponseErrorWireForm(t *testing.T) {
	got := mustMarshal(t, Error("bad date value"))
	want := `{"result":{"error":"bad date value"}}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResponseRegisterModifiersWireForm(t *testing.T) {
	clean := true
	got := mustMarshal(t, OKWithModifiers(&RegisterModifiers{CleanSession: &clean}))
	want := `{"modifiers":{"clean_session":true},"result":"ok"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResponseTopicsWireForm(t *testing.T) {
	resp := OKWithTopics(TopicSettings{
		{Topic: "node/1/datum/power/0", Qos: AtLeastOnce},
		{Topic: "node/2/datum/power/0", Qos: NotAllowed},
	})
	got := mustMarshal(t, resp)
	want := `{"result":"ok","topics":[{"topic":"node/1/datum/power/0","qos":1},{"topic":"node/2/datum/power/0","qos":128}]}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSubscribeRequestDecoding(t *testing.T) {
	raw := `{"client_id":"conn-1","mountpoint":"","username":"tok1","topics":[{"topic":"node/1/datum/power/0","qos":1}]}`
	var req SubscribeRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Username != "tok1" || len(req.Topics) != 1 {
		t.Fatalf("decoded unexpectedly: %+v", req)
	}
	if req.Topics[0].Qos != AtLeastOnce {
		t.Errorf("qos = %v, want AtLeastOnce", req.Topics[0].Qos)
	}
}

func TestRegisterRequestCleanSessionAbsentIsNil(t *testing.T) {
	raw := `{"peer_addr":"127.0.0.1","peer_port":1883,"username":"solarnode","client_id":"42"}`
	var req RegisterRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.CleanSession != nil {
		t.Errorf("clean_session absent must decode to nil, got %v", *req.CleanSession)
	}
}
