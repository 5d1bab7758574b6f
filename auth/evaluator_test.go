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
	"testing"

	"fluxhook/domain"
)

func subscription(topic string, qos domain.Qos) domain.TopicSubscription {
	return domain.TopicSubscription{Topic: topic, Qos: qos}
}

func TestEvaluateSubscribeInvalidTopicPattern(t *testing.T) {
	e := NewEvaluator()
	actor := domain.NewActor("tok", 1, false, nil, []int64{2})

	for _, topic := range []string{
		"bogus",
		"node/x/datum/foo/0",
		"node/2/other/foo/0",
		"node/2/datum",
		"prefix/node/2/datum/foo/0",
	} {
		out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{subscription(topic, domain.AtLeastOnce)})
		if !changed {
			t.Errorf("topic %q: expected a modified result", topic)
			continue
		}
		if out[0].Qos != domain.NotAllowed {
			t.Errorf("topic %q: qos = %v, want NotAllowed", topic, out[0].Qos)
		}
	}
}

func TestEvaluateSubscribeNodeOwnership(t *testing.T) {
	e := NewEvaluator()
	actor := domain.NewActor("tok", 1, false, nil, []int64{2})

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/foo/0", domain.AtLeastOnce),
	})
	if changed {
		t.Errorf("owned node should pass unchanged, got %v", out)
	}

	out, changed = e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/3/datum/foo/0", domain.AtLeastOnce),
	})
	if !changed || out[0].Qos != domain.NotAllowed {
		t.Errorf("unowned node should be denied, got changed=%v %v", changed, out)
	}
}

func TestEvaluateSubscribeWildcardNodeDeniedByPolicy(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{NodeIDs: []int64{2}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2})

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/+/datum/foo/0", domain.AtLeastOnce),
	})
	if !changed || out[0].Qos != domain.NotAllowed {
		t.Errorf("wildcard node under node restriction should be denied, got changed=%v %v", changed, out)
	}
}

func TestEvaluateSubscribePolicyNarrowsOwnership(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{NodeIDs: []int64{3}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2, 3})

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/foo/0", domain.AtLeastOnce),
		subscription("node/3/datum/foo/0", domain.AtLeastOnce),
	})
	if !changed {
		t.Fatal("expected a modified result")
	}
	if out[0].Qos != domain.NotAllowed {
		t.Errorf("node 2 outside the policy set should be denied, got %v", out[0].Qos)
	}
	if out[1].Qos != domain.AtLeastOnce {
		t.Errorf("node 3 should keep its qos, got %v", out[1].Qos)
	}
}

func TestEvaluateSubscribeSourceGlobSingleComponent(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{SourceIDs: []string{"/foo/*/bam"}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2})

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/foo/+/bam/0", domain.AtLeastOnce),
	})
	if changed {
		t.Errorf("single-level broker wildcard should satisfy the one-component glob, got %v", out)
	}

	out, changed = e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/foo/#/bam/0", domain.AtLeastOnce),
	})
	if !changed || out[0].Qos != domain.NotAllowed {
		t.Errorf("multi-level broker wildcard must not satisfy a one-component glob, got changed=%v %v", changed, out)
	}
}

func TestEvaluateSubscribeSourceGlobMultiComponent(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{SourceIDs: []string{"/foo/**"}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2})

	for _, topic := range []string{
		"node/2/datum/foo/bar/0",
		"node/2/datum/foo/bar/baz/0",
	} {
		if out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
			subscription(topic, domain.AtLeastOnce),
		}); changed {
			t.Errorf("topic %q should be allowed, got %v", topic, out)
		}
	}

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/z/bar/0", domain.AtLeastOnce),
	})
	if !changed || out[0].Qos != domain.NotAllowed {
		t.Errorf("source outside the glob should be denied, got changed=%v %v", changed, out)
	}
}

func TestEvaluateSubscribeSourceVerbatimMatch(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{SourceIDs: []string{"/power/main"}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2})

	if out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/power/main/0", domain.ExactlyOnce),
	}); changed {
		t.Errorf("verbatim source match should be allowed, got %v", out)
	}
}

func TestEvaluateSubscribeAggregationRestriction(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{Aggregations: []domain.Aggregation{domain.AggregationHour}}
	actor := domain.NewActor("tok", 1, false, policy, []int64{2})

	if out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/2/datum/foo/h", domain.AtLeastOnce),
	}); changed {
		t.Errorf("allowed aggregation should pass, got %v", out)
	}

	for _, topic := range []string{
		"node/2/datum/foo/0", // raw not in the allowed set
		"node/2/datum/foo/x", // unknown token
	} {
		out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
			subscription(topic, domain.AtLeastOnce),
		})
		if !changed || out[0].Qos != domain.NotAllowed {
			t.Errorf("topic %q should be denied, got changed=%v %v", topic, changed, out)
		}
	}
}

func TestEvaluateSubscribeEmptyPolicyUnchanged(t *testing.T) {
	e := NewEvaluator()
	policy := &domain.SecurityPolicy{}
	actor := domain.NewActor("tok", 1, false, policy, []int64{1, 2})

	in := domain.TopicSettings{
		subscription("node/1/datum/power/0", domain.AtMostOnce),
		subscription("node/2/datum/foo/bar/h", domain.ExactlyOnce),
	}
	out, changed := e.EvaluateSubscribe(actor, in)
	if changed {
		t.Fatalf("empty policy must not modify the request, got %v", out)
	}
	if &out[0] != &in[0] {
		t.Error("unchanged result should be the original list")
	}
}

func TestEvaluateSubscribeMixedResult(t *testing.T) {
	e := NewEvaluator()
	actor := domain.NewActor("tok1", 1, false, nil, []int64{1})

	out, changed := e.EvaluateSubscribe(actor, domain.TopicSettings{
		subscription("node/1/datum/power/0", domain.AtLeastOnce),
		subscription("node/2/datum/power/0", domain.AtLeastOnce),
	})
	if !changed {
		t.Fatal("expected a modified result")
	}
	want := domain.TopicSettings{
		subscription("node/1/datum/power/0", domain.AtLeastOnce),
		subscription("node/2/datum/power/0", domain.NotAllowed),
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestEvaluatePublishGate(t *testing.T) {
	e := NewEvaluator()
	msg := &domain.PublishRequest{
		ClientID: "2",
		Username: "solarnode",
		Topic:    "node/2/datum/foo/0",
		Qos:      domain.AtMostOnce,
	}

	publisher := domain.NewActor("node:2", 1, true, nil, []int64{2})
	out, modified := e.EvaluatePublish(publisher, msg)
	if out != msg || modified {
		t.Errorf("allowed publish should return the message unchanged, got %v modified=%v", out, modified)
	}

	reader := domain.NewActor("tok", 1, false, nil, []int64{2})
	if out, _ := e.EvaluatePublish(reader, msg); out != nil {
		t.Errorf("actor without publish grant should be denied, got %v", out)
	}
}

func TestNormalizeSourcePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/foo/bar", "foo/bar"},
		{"foo/bar/", "foo/bar"},
		{"/foo/#/bam", "foo/#/#/bam"},
		{"/#", "#/#"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalizeSourcePath(c.in); got != c.want {
			t.Errorf("normalizeSourcePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitTopic(t *testing.T) {
	e := NewEvaluator()
	node, source, agg, ok := e.SplitTopic("node/42/datum/power/main/h")
	if !ok {
		t.Fatal("topic should match the grammar")
	}
	if node != "42" || source != "/power/main" || agg != "h" {
		t.Errorf("got (%q, %q, %q)", node, source, agg)
	}

	if _, _, _, ok := e.SplitTopic("not/a/datum/topic"); ok {
		t.Error("non-matching topic should report ok=false")
	}
}
