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
	"time"
)

func msPtr(v int64) *int64 { return &v }

func TestPolicyValidAt(t *testing.T) {
	now := time.Now()
	ms := now.UnixMilli()

	cases := []struct {
		name   string
		policy *SecurityPolicy
		want   bool
	}{
		{"nil policy", nil, true},
		{"unbounded", &SecurityPolicy{}, true},
		{"inside window", &SecurityPolicy{NotBefore: msPtr(ms - 1000), NotAfter: msPtr(ms + 1000)}, true},
		{"at lower bound", &SecurityPolicy{NotBefore: msPtr(ms)}, true},
		{"at upper bound", &SecurityPolicy{NotAfter: msPtr(ms)}, true},
		{"before window", &SecurityPolicy{NotBefore: msPtr(ms + 1)}, false},
		{"after window", &SecurityPolicy{NotAfter: msPtr(ms - 1)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.policy.ValidAt(now); got != c.want {
				t.Errorf("ValidAt = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPolicyEmptyRestrictionsBehaveLikeNoPolicy(t *testing.T) {
	p := &SecurityPolicy{}
	if p.RestrictsNodes() || p.RestrictsSources() || p.RestrictsAggregations() {
		t.Error("empty policy must not restrict anything")
	}
	if !p.AllowsAggregation(AggregationMonth) {
		t.Error("empty policy must allow every aggregation")
	}
}

func TestPolicyAllowsAggregation(t *testing.T) {
	p := &SecurityPolicy{Aggregations: []Aggregation{AggregationNone, AggregationHour}}
	if !p.AllowsAggregation(AggregationNone) {
		t.Error("None should be allowed")
	}
	if p.AllowsAggregation(AggregationDay) {
		t.Error("Day should be denied")
	}
}

func TestPolicyJSONDecoding(t *testing.T) {
	raw := `{"nodeIds":[2,3],"sourceIds":["/foo/**"],"aggregations":["None","h"],"notAfter":1700000000000}`
	var p SecurityPolicy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.HasNodeID(2) || !p.HasNodeID(3) || p.HasNodeID(4) {
		t.Errorf("node restriction decoded incorrectly: %v", p.NodeIDs)
	}
	if len(p.Aggregations) != 2 || p.Aggregations[0] != AggregationNone || p.Aggregations[1] != AggregationHour {
		t.Errorf("aggregations decoded incorrectly: %v", p.Aggregations)
	}
	if p.NotAfter == nil || *p.NotAfter != 1700000000000 {
		t.Errorf("notAfter decoded incorrectly: %v", p.NotAfter)
	}
}

func TestActorAllowedNodesIntersectsPolicy(t *testing.T) {
	policy := &SecurityPolicy{NodeIDs: []int64{3}}
	actor := NewActor("tok", 1, false, policy, []int64{2, 3})
	if actor.AllowedNodeIDs.Contains(2) {
		t.Error("node 2 owned but outside policy restriction, must not be allowed")
	}
	if !actor.AllowedNodeIDs.Contains(3) {
		t.Error("node 3 owned and inside policy restriction, must be allowed")
	}
}

func TestActorNoPolicyKeepsOwnership(t *testing.T) {
	actor := NewActor("tok", 1, false, nil, []int64{5, 7})
	if !actor.AllowedNodeIDs.Contains(5) || !actor.AllowedNodeIDs.Contains(7) {
		t.Error("ownership set must be preserved when no policy is present")
	}
	if actor.AllowedNodeIDs.Contains(6) {
		t.Error("unowned node must not be allowed")
	}
}
