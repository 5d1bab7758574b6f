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

package auth

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"fluxhook/domain"
	"fluxhook/shared/logger"
)

// DefaultTopicRegex is the datum topic grammar. Groups: node ID or the
// broker single-level wildcard, optional source path with its leading
// slash, aggregation token.
const DefaultTopicRegex = `^node/(\d+|\+)/datum(/.*)?/([^/]+)$`

// Evaluator applies an actor's ownership and policy to subscribe and
// publish requests. It is immutable after construction and safe for
// concurrent use; the glob-validity cache is read-through and
// race-tolerant, a duplicate store is harmless.
type Evaluator struct {
	topicRegex *regexp.Regexp
	log        *logger.Logger

	patternValid sync.Map // source glob pattern -> bool
}

// NewEvaluator returns an evaluator using DefaultTopicRegex.
func NewEvaluator() *Evaluator {
	return NewEvaluatorWithRegex(regexp.MustCompile(DefaultTopicRegex))
}

// NewEvaluatorWithRegex returns an evaluator with a custom topic
// grammar. The regex must expose the same three capture groups as
// DefaultTopicRegex.
func NewEvaluatorWithRegex(topicRegex *regexp.Regexp) *Evaluator {
	return &Evaluator{
		topicRegex: topicRegex,
		log:        logger.New("evaluator"),
	}
}

// EvaluateSubscribe checks every requested subscription independently.
// Denied entries keep their topic and get qos NotAllowed. The returned
// bool reports whether the result differs from the request; when false
// the broker should keep the client's original request untouched.
func (e *Evaluator) EvaluateSubscribe(actor *domain.Actor, topics domain.TopicSettings) (domain.TopicSettings, bool) {
	if actor == nil || len(topics) == 0 {
		return topics, false
	}
	out := make(domain.TopicSettings, 0, len(topics))
	changed := false
	for _, s := range topics {
		qos := s.Qos
		if !e.topicAllowed(actor, s.Topic) {
			qos = domain.NotAllowed
		}
		if qos != s.Qos {
			changed = true
		}
		out = append(out, domain.TopicSubscription{Topic: s.Topic, Qos: qos})
	}
	if !changed {
		return topics, false
	}
	return out, true
}

// EvaluatePublish gates publishes on the actor's publish grant. A nil
// message denies the publish; the bool reports whether the returned
// message differs from the request. Topic and payload level publish
// restrictions are not enforced here.
func (e *Evaluator) EvaluatePublish(actor *domain.Actor, msg *domain.PublishRequest) (*domain.PublishRequest, bool) {
	if actor == nil || msg == nil {
		return nil, false
	}
	if !actor.PublishAllowed {
		e.log.Info(actor.ID, "", "publish denied: actor has no publish grant",
			map[string]interface{}{"topic": msg.Topic})
		return nil, false
	}
	return msg, false
}

// SplitTopic decomposes a datum topic into its node token, source path
// (leading slash preserved, possibly empty) and aggregation token. ok
// is false when the topic does not match the grammar.
func (e *Evaluator) SplitTopic(topic string) (nodeToken, sourcePath, aggToken string, ok bool) {
	m := e.topicRegex.FindStringSubmatch(topic)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

func (e *Evaluator) topicAllowed(actor *domain.Actor, topic string) bool {
	node, source, agg, ok := e.SplitTopic(topic)
	if !ok {
		e.deny(actor, topic, "invalid topic pattern")
		return false
	}
	return e.nodeAllowed(actor, topic, node) &&
		e.sourceAllowed(actor, topic, source) &&
		e.aggregationAllowed(actor, topic, agg)
}

func (e *Evaluator) nodeAllowed(actor *domain.Actor, topic, token string) bool {
	if token == "+" && actor.Policy.RestrictsNodes() {
		// all-nodes wildcard under a node restriction
		e.deny(actor, topic, "wildcard node not allowed by policy")
		return false
	}
	nodeID, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		e.deny(actor, topic, "node ID not a number")
		return false
	}
	if !actor.AllowedNodeIDs.Contains(nodeID) {
		e.deny(actor, topic, "node ID not allowed")
		return false
	}
	return true
}

func (e *Evaluator) sourceAllowed(actor *domain.Actor, topic, source string) bool {
	if !actor.Policy.RestrictsSources() {
		return true
	}
	path := normalizeSourcePath(source)
	for _, pattern := range actor.Policy.SourceIDs {
		if e.sourceMatches(pattern, path) {
			return true
		}
	}
	e.deny(actor, topic, "source ID not allowed")
	return false
}

func (e *Evaluator) aggregationAllowed(actor *domain.Actor, topic, token string) bool {
	if !actor.Policy.RestrictsAggregations() {
		return true
	}
	agg, err := domain.ParseAggregation(token)
	if err != nil {
		e.deny(actor, topic, "unknown aggregation")
		return false
	}
	if !actor.Policy.AllowsAggregation(agg) {
		e.deny(actor, topic, "aggregation not allowed")
		return false
	}
	return true
}

// sourceMatches tests one policy pattern against a normalized source
// path: verbatim equality first, then hierarchical glob semantics
// where "*" spans one path component and "**" spans any number.
func (e *Evaluator) sourceMatches(pattern, path string) bool {
	pat := strings.Trim(pattern, "/")
	if pat == path {
		return true
	}
	if !e.validPattern(pat) {
		return false
	}
	ok, err := doublestar.Match(pat, path)
	return err == nil && ok
}

func (e *Evaluator) validPattern(pat string) bool {
	if v, ok := e.patternValid.Load(pat); ok {
		return v.(bool)
	}
	valid := doublestar.ValidatePattern(pat)
	e.patternValid.Store(pat, valid)
	return valid
}

// normalizeSourcePath trims the surrounding slashes and expands every
// broker multi-level wildcard component into two, so a "#" cannot
// satisfy a single-component glob during matching.
func normalizeSourcePath(source string) string {
	parts := strings.Split(strings.Trim(source, "/"), "/")
	for i, p := range parts {
		if p == "#" {
			parts[i] = "#/#"
		}
	}
	return strings.Join(parts, "/")
}

func (e *Evaluator) deny(actor *domain.Actor, topic, reason string) {
	e.log.Info(actor.ID, "", "topic access denied: "+reason,
		map[string]interface{}{"topic": topic, "actor": actor.String()})
}
