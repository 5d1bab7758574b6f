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
	"time"
)

// SecurityPolicy is an optional restriction layer on top of node
// ownership. A policy with all three restriction sets empty behaves
// exactly like no policy at all.
type SecurityPolicy struct {
	// NodeIDs restricts which node IDs may be referenced. When present
	// and non-empty, wildcard node subscriptions are always denied.
	NodeIDs []int64 `json:"nodeIds,omitempty"`

	// SourceIDs restricts source paths via hierarchical glob patterns:
	// components separated by "/", "*" matching one component and "**"
	// spanning any number of components.
	SourceIDs []string `json:"sourceIds,omitempty"`

	// Aggregations restricts the allowed aggregation levels.
	Aggregations []Aggregation `json:"aggregations,omitempty"`

	// NotBefore and NotAfter bound the policy's validity, inclusive,
	// in milliseconds since the epoch. A nil bound is unbounded.
	NotBefore *int64 `json:"notBefore,omitempty"`
	NotAfter  *int64 `json:"notAfter,omitempty"`
}

// RestrictsNodes reports whether the policy carries a node restriction.
func (p *SecurityPolicy) RestrictsNodes() bool {
	return p != nil && len(p.NodeIDs) > 0
}

// RestrictsSources reports whether the policy carries a source restriction.
func (p *SecurityPolicy) RestrictsSources() bool {
	return p != nil && len(p.SourceIDs) > 0
}

// RestrictsAggregations reports whether the policy carries an
// aggregation restriction.
func (p *SecurityPolicy) RestrictsAggregations() bool {
	return p != nil && len(p.Aggregations) > 0
}

// HasNodeID reports whether id is in the policy's node restriction set.
func (p *SecurityPolicy) HasNodeID(id int64) bool {
	if p == nil {
		return false
	}
	for _, n := range p.NodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// AllowsAggregation reports whether the given level passes the policy's
// aggregation restriction. An unrestricted policy allows every level.
func (p *SecurityPolicy) AllowsAggregation(agg Aggregation) bool {
	if !p.RestrictsAggregations() {
		return true
	}
	for _, a := range p.Aggregations {
		if a == agg {
			return true
		}
	}
	return false
}

// ValidAt reports whether the policy may be used at the given instant.
// Bounds are inclusive; a nil policy is always valid.
func (p *SecurityPolicy) ValidAt(t time.Time) bool {
	if p == nil {
		return true
	}
	ms := t.UnixMilli()
	if p.NotBefore != nil && ms < *p.NotBefore {
		return false
	}
	if p.NotAfter != nil && ms > *p.NotAfter {
		return false
	}
	return true
}
