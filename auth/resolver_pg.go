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
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"fluxhook/domain"
)

// Default resolver statements. All three are read-only; the signature
// check happens inside the verify function so no key material crosses
// this boundary.
const (
	DefaultVerifyTokenStatement = `SELECT user_id, token_type, jpolicy FROM mqttauth.find_verified_token_details($1, $2, $3, $4, $5)`

	DefaultTokenStatement = `SELECT user_id, token_type, jpolicy, node_ids FROM mqttauth.token_node_ids WHERE token_id = $1`

	DefaultNodeStatement = `SELECT user_id, 'Node' AS token_type, NULL AS jpolicy, ARRAY[node_id] AS node_ids FROM mqttauth.node_owner WHERE node_id = $1`
)

// nodeTokenType is the token_type value that grants the publish path.
const nodeTokenType = "Node"

// ResolverConfig overrides the resolver statements. Empty fields keep
// the defaults.
type ResolverConfig struct {
	VerifyTokenStatement string
	TokenStatement       string
	NodeStatement        string
}

// PostgresResolver resolves identities against the credential store.
// Safe for concurrent use; *sql.DB pools connections.
type PostgresResolver struct {
	db  *sql.DB
	cfg ResolverConfig
}

// NewPostgresResolver creates a resolver over an open database handle.
func NewPostgresResolver(db *sql.DB, cfg ResolverConfig) *PostgresResolver {
	if cfg.VerifyTokenStatement == "" {
		cfg.VerifyTokenStatement = DefaultVerifyTokenStatement
	}
	if cfg.TokenStatement == "" {
		cfg.TokenStatement = DefaultTokenStatement
	}
	if cfg.NodeStatement == "" {
		cfg.NodeStatement = DefaultNodeStatement
	}
	return &PostgresResolver{db: db, cfg: cfg}
}

// VerifyToken checks the credential signature and returns the actor on
// success. The verified actor carries no node ownership set; the
// register path only needs the policy.
func (r *PostgresResolver) VerifyToken(ctx context.Context, tokenID string, ts time.Time, host, path, signature string) (*domain.Actor, error) {
	var (
		userID     int64
		tokenType  string
		policyJSON []byte
	)
	err := r.db.QueryRowContext(ctx, r.cfg.VerifyTokenStatement, tokenID, ts, host, path, signature).
		Scan(&userID, &tokenType, &policyJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	policy, err := decodePolicy(policyJSON)
	if err != nil {
		return nil, err
	}
	return domain.NewActor(tokenID, userID, tokenType == nodeTokenType, policy, nil), nil
}

// ResolveToken returns the actor for a token ID with its owned nodes.
func (r *PostgresResolver) ResolveToken(ctx context.Context, tokenID string) (*domain.Actor, error) {
	var (
		userID     int64
		tokenType  string
		policyJSON []byte
		nodeIDs    pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, r.cfg.TokenStatement, tokenID).
		Scan(&userID, &tokenType, &policyJSON, &nodeIDs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	policy, err := decodePolicy(policyJSON)
	if err != nil {
		return nil, err
	}
	return domain.NewActor(tokenID, userID, tokenType == nodeTokenType, policy, nodeIDs), nil
}

// ResolveNode returns the actor for a node owner lookup. The actor ID
// is synthesized from the node ID.
func (r *PostgresResolver) ResolveNode(ctx context.Context, nodeID int64) (*domain.Actor, error) {
	var (
		userID     int64
		tokenType  string
		policyJSON []byte
		nodeIDs    pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, r.cfg.NodeStatement, nodeID).
		Scan(&userID, &tokenType, &policyJSON, &nodeIDs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve node: %w", err)
	}
	policy, err := decodePolicy(policyJSON)
	if err != nil {
		return nil, err
	}
	return domain.NewActor(fmt.Sprintf("node:%d", nodeID), userID, tokenType == nodeTokenType, policy, nodeIDs), nil
}

// decodePolicy parses a stored jpolicy document. SQL NULL and JSON
// null both mean no policy.
func decodePolicy(data []byte) (*domain.SecurityPolicy, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var p domain.SecurityPolicy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}
	return &p, nil
}
