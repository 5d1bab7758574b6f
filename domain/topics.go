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

// ResponseTopics is the rewritten topic list a subscribe response may
// carry: either full per-topic settings or a plain topic-string list.
type ResponseTopics interface {
	isResponseTopics()
}

// TopicSubscription is one requested (topic, qos) pair.
type TopicSubscription struct {
	Topic string `json:"topic"`
	Qos   Qos    `json:"qos"`
}

// TopicSettings is an ordered list of subscription settings. In a
// response, an entry with Qos NotAllowed denies that single topic.
type TopicSettings []TopicSubscription

func (TopicSettings) isResponseTopics() {}

// TopicList is a plain list of topic strings.
type TopicList []string

func (TopicList) isResponseTopics() {}
