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
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"fluxhook/domain"
	"fluxhook/shared/logger"
)

// DefaultActorCacheTTL bounds how stale a cached actor may be.
const DefaultActorCacheTTL = time.Minute

// CachingResolver wraps an IdentityResolver with a short-lived Redis
// cache over the two lookup paths. VerifyToken is never cached: a
// signature check must always reach the verifier. Every cache failure
// falls through to the wrapped resolver, so a broken cache degrades to
// extra lookups, never to wrong answers.
type CachingResolver struct {
	next IdentityResolver
	rdb  *redis.Client
	ttl  time.Duration
	log  *logger.Logger
}

// NewCachingResolver wraps next with a Redis actor cache.
func NewCachingResolver(next IdentityResolver, rdb *redis.Client, ttl time.Duration) *CachingResolver {
	if ttl <= 0 {
		ttl = DefaultActorCacheTTL
	}
	return &CachingResolver{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  logger.New("actor-cache"),
	}
}

// ResolveNode looks up the node actor, consulting the cache first.
func (c *CachingResolver) ResolveNode(ctx context.Context, nodeID int64) (*domain.Actor, error) {
	key := fmt.Sprintf("fluxhook:actor:node:%d", nodeID)
	return c.lookup(ctx, key, func() (*domain.Actor, error) {
		return c.next.ResolveNode(ctx, nodeID)
	})
}

// ResolveToken looks up the token actor, consulting the cache first.
func (c *CachingResolver) ResolveToken(ctx context.Context, tokenID string) (*domain.Actor, error) {
	key := "fluxhook:actor:token:" + tokenID
	return c.lookup(ctx, key, func() (*domain.Actor, error) {
		return c.next.ResolveToken(ctx, tokenID)
	})
}

// VerifyToken always delegates.
func (c *CachingResolver) VerifyToken(ctx context.Context, tokenID string, ts time.Time, host, path, signature string) (*domain.Actor, error) {
	return c.next.VerifyToken(ctx, tokenID, ts, host, path, signature)
}

func (c *CachingResolver) lookup(ctx context.Context, key string, resolve func() (*domain.Actor, error)) (*domain.Actor, error) {
	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var actor domain.Actor
		if err := json.Unmarshal(data, &actor); err == nil {
			actorCacheHits.Inc()
			return &actor, nil
		}
		c.log.Warn("", "", "ignoring undecodable cache entry", map[string]interface{}{"key": key})
	} else if err != redis.Nil {
		c.log.Warn("", "", "cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	actorCacheMisses.Inc()

	actor, err := resolve()
	if err != nil || actor == nil {
		return actor, err
	}
	if data, err := json.Marshal(actor); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("", "", "cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return actor, nil
}
