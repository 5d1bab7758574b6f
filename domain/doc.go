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

// Package domain holds the immutable value types exchanged with the
// MQTT broker's auth webhooks: hook request payloads, the decision
// Response with its modifier and topic-list variants, and the resolved
// identity model (Actor, SecurityPolicy).
//
// Every value is built once per hook call and discarded after
// serialization; nothing in this package is shared or mutated across
// calls.
package domain
