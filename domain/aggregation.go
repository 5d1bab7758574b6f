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
	"strings"
)

// Aggregation is a named time-bucketing level for datum topics. The
// value is the token that appears as the final topic component.
type Aggregation string

const (
	// AggregationNone identifies raw, unaggregated datum streams.
	AggregationNone  Aggregation = "0"
	AggregationHour  Aggregation = "h"
	AggregationDay   Aggregation = "d"
	AggregationMonth Aggregation = "M"
)

var aggregationNames = map[string]Aggregation{
	"none":  AggregationNone,
	"hour":  AggregationHour,
	"day":   AggregationDay,
	"month": AggregationMonth,
}

// ParseAggregation resolves a topic token or a case-insensitive level
// name ("None", "Hour", "Day", "Month") to an Aggregation.
func ParseAggregation(token string) (Aggregation, error) {
	switch Aggregation(token) {
	case AggregationNone, AggregationHour, AggregationDay, AggregationMonth:
		return Aggregation(token), nil
	}
	if agg, ok := aggregationNames[strings.ToLower(token)]; ok {
		return agg, nil
	}
	return "", fmt.Errorf("aggregation not supported: %q", token)
}

func (a Aggregation) String() string {
	switch a {
	case AggregationNone:
		return "None"
	case AggregationHour:
		return "Hour"
	case AggregationDay:
		return "Day"
	case AggregationMonth:
		return "Month"
	}
	return string(a)
}

// UnmarshalJSON accepts either the topic token or the level name, so
// stored policies may use whichever form they were written with.
func (a *Aggregation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	agg, err := ParseAggregation(s)
	if err != nil {
		return err
	}
	*a = agg
	return nil
}
