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
	"context"
	"database/sql"
	"sync"
	"time"

	"fluxhook/domain"
	"fluxhook/shared/logger"
)

// DefaultAuditStatement records one publish event: service name, node,
// source, timestamp, payload byte count.
const DefaultAuditStatement = `SELECT mqttauth.audit_publish_message($1, $2, $3, $4, $5)`

// Audit queue defaults.
const (
	DefaultAuditQueueSize   = 1000
	DefaultAuditWorkers     = 2
	DefaultAuditServiceName = "fluxhook"

	auditWriteTimeout = 5 * time.Second
)

// AuditConfig carries the audit sink knobs. Zero values select the
// defaults above.
type AuditConfig struct {
	Statement   string
	ServiceName string
	QueueSize   int
	Workers     int
}

type auditEvent struct {
	actorID   string
	nodeID    int64
	sourceID  string
	ts        time.Time
	byteCount int
}

// AuditQueue is a fire-and-forget publish audit sink. Events land on a
// bounded channel served by background workers; when the channel is
// full the event is dropped and counted. The decision path never
// blocks on audit and never sees its failures.
type AuditQueue struct {
	db          *sql.DB
	statement   string
	serviceName string
	queue       chan auditEvent
	wg          sync.WaitGroup
	log         *logger.Logger
}

// NewAuditQueue starts the audit workers.
func NewAuditQueue(db *sql.DB, cfg AuditConfig) *AuditQueue {
	if cfg.Statement == "" {
		cfg.Statement = DefaultAuditStatement
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultAuditServiceName
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultAuditQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultAuditWorkers
	}
	q := &AuditQueue{
		db:          db,
		statement:   cfg.Statement,
		serviceName: cfg.ServiceName,
		queue:       make(chan auditEvent, cfg.QueueSize),
		log:         logger.New("audit"),
	}
	for i := 0; i < cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// RecordPublish enqueues one publish event. Never blocks; a full queue
// drops the event.
func (q *AuditQueue) RecordPublish(actor *domain.Actor, nodeID int64, sourceID string, ts time.Time, byteCount int) {
	ev := auditEvent{
		nodeID:    nodeID,
		sourceID:  sourceID,
		ts:        ts,
		byteCount: byteCount,
	}
	if actor != nil {
		ev.actorID = actor.ID
	}
	select {
	case q.queue <- ev:
		auditQueueDepth.Set(float64(len(q.queue)))
	default:
		auditEventsDropped.Inc()
		q.log.Warn(ev.actorID, "", "audit queue full, dropping publish event",
			map[string]interface{}{"node_id": nodeID, "source_id": sourceID})
	}
}

func (q *AuditQueue) worker() {
	defer q.wg.Done()
	for ev := range q.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		_, err := q.db.ExecContext(ctx, q.statement, q.serviceName, ev.nodeID, ev.sourceID, ev.ts, ev.byteCount)
		cancel()
		auditQueueDepth.Set(float64(len(q.queue)))
		if err != nil {
			auditWriteFailures.Inc()
			q.log.Error(ev.actorID, "", "failed to record publish audit event",
				map[string]interface{}{"node_id": ev.nodeID, "source_id": ev.sourceID, "error": err.Error()})
		}
	}
}

// Close drains the queued events and stops the workers.
func (q *AuditQueue) Close() {
	close(q.queue)
	q.wg.Wait()
}
