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

package hookd

import "github.com/prometheus/client_golang/prometheus"

var (
	hookRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fluxhook_hook_requests_total",
		Help: "Hook requests by hook type and decision result.",
	}, []string{"hook", "result"})

	hookDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fluxhook_hook_duration_seconds",
		Help:    "Hook decision latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"hook"})
)

func init() {
	prometheus.MustRegister(hookRequests, hookDuration)
}
