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
	"time"

	"fluxhook/domain"
)

// IdentityResolver looks up authenticated identities. All methods are
// read-only and safe for concurrent use. A nil Actor with a nil error
// means not found: credentials that do not match are expected input,
// not an error. Errors are reserved for infrastructure failures and
// propagate to the caller.
type IdentityResolver interface {
	// ResolveNode returns the actor owning the given node.
	ResolveNode(ctx context.Context, nodeID int64) (*domain.Actor, error)

	// ResolveToken returns the actor for a token ID. No signature is
	// checked; this is the policy lookup used on the subscribe path.
	ResolveToken(ctx context.Context, tokenID string) (*domain.Actor, error)

	// VerifyToken checks the request signature against the credential
	// store and returns the associated actor on success.
	VerifyToken(ctx context.Context, tokenID string, ts time.Time, host, path, signature string) (*domain.Actor, error)
}

// AuditRecorder receives accepted publish events. Implementations must
// be best-effort and must never block the decision path.
type AuditRecorder interface {
	RecordPublish(actor *domain.Actor, nodeID int64, sourceID string, ts time.Time, byteCount int)
}
