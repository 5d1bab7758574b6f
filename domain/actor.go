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
	"fmt"
	"sort"
)

// NodeIDSet is a set of node IDs. It serializes as a sorted JSON array.
// Sets are never mutated after construction.
type NodeIDSet map[int64]struct{}

// NewNodeIDSet builds a set from the given IDs.
func NewNodeIDSet(ids ...int64) NodeIDSet {
	s := make(NodeIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports set membership.
func (s NodeIDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Values returns the members as a sorted slice.
func (s NodeIDSet) Values() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s NodeIDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes a JSON array into the set.
func (s *NodeIDSet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewNodeIDSet(ids...)
	return nil
}

// Actor is a resolved, authenticated identity for the duration of one
// hook call. All fields are fixed at construction.
type Actor struct {
	// ID is the security token ID, or a value synthesized from the node
	// ID for trusted-transport node identities.
	ID string `json:"id"`

	// UserID is the owning account.
	UserID int64 `json:"userId"`

	// PublishAllowed grants the publish path.
	PublishAllowed bool `json:"publishAllowed"`

	// AllowedNodeIDs is the set of nodes this identity may reference:
	// the ownership set, narrowed by the policy node restriction when
	// one is present.
	AllowedNodeIDs NodeIDSet `json:"allowedNodeIds"`

	// Policy is the optional restriction layer. Nil means no
	// restriction beyond ownership.
	Policy *SecurityPolicy `json:"policy,omitempty"`
}

// NewActor builds an Actor from an ownership node set and an optional
// policy. When the policy restricts node IDs, the allowed set is the
// intersection of ownership and the policy set, so a single membership
// check enforces both.
func NewActor(id string, userID int64, publishAllowed bool, policy *SecurityPolicy, ownedNodeIDs []int64) *Actor {
	allowed := make(NodeIDSet, len(ownedNodeIDs))
	for _, n := range ownedNodeIDs {
		if policy.RestrictsNodes() && !policy.HasNodeID(n) {
			continue
		}
		allowed[n] = struct{}{}
	}
	return &Actor{
		ID:             id,
		UserID:         userID,
		PublishAllowed: publishAllowed,
		AllowedNodeIDs: allowed,
		Policy:         policy,
	}
}

func (a *Actor) String() string {
	return fmt.Sprintf("Actor{%s, user %d, nodes %v}", a.ID, a.UserID, a.AllowedNodeIDs.Values())
}
