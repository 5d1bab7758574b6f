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
)

// ResponseStatus is the hook decision verdict.
type ResponseStatus string

const (
	// StatusOK accepts the request, possibly with modifiers.
	StatusOK ResponseStatus = "ok"

	// StatusError rejects a malformed request with a diagnostic message.
	StatusError ResponseStatus = "error"

	// StatusNext defers: this service has no opinion and the broker
	// should consult its other auth mechanisms.
	StatusNext ResponseStatus = "next"
)

// ResponseModifiers is the broker-setting override set a response may
// carry: RegisterModifiers on the register path, PublishModifiers on
// the publish path.
type ResponseModifiers interface {
	isResponseModifiers()
}

// RegisterModifiers override broker session settings on an accepted
// register. Nil fields are omitted from the wire form.
type RegisterModifiers struct {
	SubscriberID        *string `json:"subscriber_id,omitempty"`
	RegView             *string `json:"reg_view,omitempty"`
	CleanSession        *bool   `json:"clean_session,omitempty"`
	MaxMessageSize      *int    `json:"max_message_size,omitempty"`
	MaxMessageRate      *int    `json:"max_message_rate,omitempty"`
	MaxInflightMessages *int    `json:"max_inflight_messages,omitempty"`
	RetryInterval       *int64  `json:"retry_interval,omitempty"`
	UpgradeQos          *bool   `json:"upgrade_qos,omitempty"`
}

func (*RegisterModifiers) isResponseModifiers() {}

// PublishModifiers override message fields on an accepted publish.
type PublishModifiers struct {
	Topic   string `json:"topic,omitempty"`
	Qos     *Qos   `json:"qos,omitempty"`
	Payload []byte `json:"payload,omitempty"`
	Retain  *bool  `json:"retain,omitempty"`
}

func (*PublishModifiers) isResponseModifiers() {}

// Response is one hook decision. At most one of Modifiers and Topics is
// populated, and only when Status is StatusOK.
type Response struct {
	Status       ResponseStatus
	ErrorMessage string
	Modifiers    ResponseModifiers
	Topics       ResponseTopics
}

// OK builds a plain accept response.
func OK() Response {
	return Response{Status: StatusOK}
}

// OKWithModifiers builds an accept response carrying setting overrides.
func OKWithModifiers(mods ResponseModifiers) Response {
	return Response{Status: StatusOK, Modifiers: mods}
}

// OKWithTopics builds an accept response carrying a rewritten topic list.
func OKWithTopics(topics ResponseTopics) Response {
	return Response{Status: StatusOK, Topics: topics}
}

// Next builds a deferral response.
func Next() Response {
	return Response{Status: StatusNext}
}

// Error builds a rejection response with a diagnostic message.
func Error(message string) Response {
	return Response{Status: StatusError, ErrorMessage: message}
}

// MarshalJSON encodes the webhook wire form: a "result" field holding
// "ok", "next", or {"error": "<message>"}, with optional "modifiers"
// and "topics" siblings.
func (r Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 2)
	if r.Status == StatusError {
		out["result"] = map[string]string{string(StatusError): r.ErrorMessage}
	} else {
		out["result"] = string(r.Status)
	}
	if r.Modifiers != nil {
		out["modifiers"] = r.Modifiers
	}
	if r.Topics != nil {
		out["topics"] = r.Topics
	}
	return json.Marshal(out)
}
