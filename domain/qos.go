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
	"errors"
	"fmt"
)

// Qos is an MQTT quality-of-service level with its wire code.
type Qos int

const (
	AtMostOnce  Qos = 0
	AtLeastOnce Qos = 1
	ExactlyOnce Qos = 2

	// NotAllowed is not a delivery guarantee. It is the reserved code a
	// subscribe response uses to deny a single topic while the rest of
	// the request is accepted.
	NotAllowed Qos = 128
)

// ErrInvalidQos is returned when decoding an unrecognized QoS code.
var ErrInvalidQos = errors.New("qos code not supported")

// QosForCode maps a wire code to a Qos value.
func QosForCode(code int) (Qos, error) {
	switch Qos(code) {
	case AtMostOnce, AtLeastOnce, ExactlyOnce, NotAllowed:
		return Qos(code), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidQos, code)
}

func (q Qos) String() string {
	switch q {
	case AtMostOnce:
		return "AtMostOnce"
	case AtLeastOnce:
		return "AtLeastOnce"
	case ExactlyOnce:
		return "ExactlyOnce"
	case NotAllowed:
		return "NotAllowed"
	}
	return fmt.Sprintf("Qos(%d)", int(q))
}

// MarshalJSON encodes the wire code.
func (q Qos) MarshalJSON() ([]byte, error) {
	if _, err := QosForCode(int(q)); err != nil {
		return nil, err
	}
	return json.Marshal(int(q))
}

// UnmarshalJSON decodes and validates the wire code.
func (q *Qos) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	v, err := QosForCode(code)
	if err != nil {
		return err
	}
	*q = v
	return nil
}
