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

// RegisterRequest is the auth_on_register hook payload. One value is
// built per hook call and discarded after the response is written.
type RegisterRequest struct {
	PeerAddress  string `json:"peer_addr"`
	PeerPort     int    `json:"peer_port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Mountpoint   string `json:"mountpoint"`
	ClientID     string `json:"client_id"`
	CleanSession *bool  `json:"clean_session"`
}

// SubscribeRequest is the auth_on_subscribe hook payload.
type SubscribeRequest struct {
	ClientID   string        `json:"client_id"`
	Mountpoint string        `json:"mountpoint"`
	Username   string        `json:"username"`
	Topics     TopicSettings `json:"topics"`
}

// PublishRequest is the auth_on_publish hook payload. Payload is
// base64 on the wire.
type PublishRequest struct {
	ClientID   string `json:"client_id"`
	Mountpoint string `json:"mountpoint"`
	Username   string `json:"username"`
	Qos        Qos    `json:"qos"`
	Topic      string `json:"topic"`
	Payload    []byte `json:"payload"`
	Retain     bool   `json:"retain"`
}
