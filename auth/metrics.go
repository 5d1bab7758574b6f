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

import "github.com/prometheus/client_golang/prometheus"

var (
	auditQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluxhook_audit_queue_depth",
		Help: "Publish audit events waiting to be written.",
	})

	auditEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxhook_audit_events_dropped_total",
		Help: "Publish audit events dropped because the queue was full.",
	})

	auditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxhook_audit_write_failures_total",
		Help: "Publish audit events that failed to persist.",
	})

	actorCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxhook_actor_cache_hits_total",
		Help: "Actor lookups served from the cache.",
	})

	actorCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxhook_actor_cache_misses_total",
		Help: "Actor lookups that fell through to the database.",
	})
)

func init() {
	prometheus.MustRegister(
		auditQueueDepth,
		auditEventsDropped,
		auditWriteFailures,
		actorCacheHits,
		actorCacheMisses,
	)
}
