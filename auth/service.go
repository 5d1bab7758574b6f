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
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fluxhook/domain"
	"fluxhook/shared/logger"
)

// Defaults for the decision service.
const (
	DefaultPublishUsername = "solarnode"
	DefaultMaxDateSkew     = 15 * time.Minute
)

// Password credential keys. The password field carries delimited
// key=value pairs rather than a secret.
const (
	passwordDateKey      = "Date"
	passwordSignatureKey = "Signature"
)

// ServiceConfig carries the decision knobs. Zero values select the
// defaults above; a negative MaxDateSkew disables the skew check.
type ServiceConfig struct {
	// PublishUsername is the trusted-transport identity: a connection
	// authenticated at the transport layer (mutual TLS) presents this
	// username and its node ID as the client ID. Compared
	// case-insensitively.
	PublishUsername string

	// MaxDateSkew bounds |now - credential date|. Exactly at the bound
	// is still accepted.
	MaxDateSkew time.Duration

	// ForceCleanSession adds a clean_session=true modifier to accepted
	// registers that did not already request one.
	ForceCleanSession bool

	// Host and Path name the endpoint the credential signature covers.
	Host string
	Path string
}

// Service makes the per-hook decisions. Each call is stateless and
// independent; many may run concurrently.
type Service struct {
	resolver  IdentityResolver
	evaluator *Evaluator
	audit     AuditRecorder
	cfg       ServiceConfig
	log       *logger.Logger

	now func() time.Time
}

// NewService builds a decision service. audit may be nil to disable
// publish audit events.
func NewService(resolver IdentityResolver, evaluator *Evaluator, audit AuditRecorder, cfg ServiceConfig) *Service {
	if cfg.PublishUsername == "" {
		cfg.PublishUsername = DefaultPublishUsername
	}
	if cfg.MaxDateSkew == 0 {
		cfg.MaxDateSkew = DefaultMaxDateSkew
	}
	if evaluator == nil {
		evaluator = NewEvaluator()
	}
	return &Service{
		resolver:  resolver,
		evaluator: evaluator,
		audit:     audit,
		cfg:       cfg,
		log:       logger.New("auth"),
		now:       time.Now,
	}
}

// Authenticate answers the register hook. Identities this service
// cannot positively verify defer with next so the broker may consult
// its other mechanisms; only a malformed credential is an error.
func (s *Service) Authenticate(ctx context.Context, req *domain.RegisterRequest) (domain.Response, error) {
	if req == nil || req.Username == "" {
		return domain.Next(), nil
	}
	if strings.EqualFold(req.Username, s.cfg.PublishUsername) {
		return s.authenticateNode(ctx, req)
	}
	return s.authenticateToken(ctx, req)
}

// authenticateNode handles the trusted-transport path: the client ID
// is the node ID.
func (s *Service) authenticateNode(ctx context.Context, req *domain.RegisterRequest) (domain.Response, error) {
	nodeID, err := strconv.ParseInt(req.ClientID, 10, 64)
	if err != nil {
		return domain.Next(), nil
	}
	actor, err := s.resolver.ResolveNode(ctx, nodeID)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to resolve node %d: %w", nodeID, err)
	}
	if actor == nil {
		return domain.Next(), nil
	}
	return s.registerOK(req), nil
}

func (s *Service) authenticateToken(ctx context.Context, req *domain.RegisterRequest) (domain.Response, error) {
	creds := parsePasswordTokens(req.Password)
	dateValue, hasDate := creds[passwordDateKey]
	signature, hasSignature := creds[passwordSignatureKey]
	if !hasDate || !hasSignature {
		// not this service's credential format
		return domain.Next(), nil
	}
	seconds, err := strconv.ParseInt(dateValue, 10, 64)
	if err != nil {
		return domain.Error(fmt.Sprintf("invalid Date value: %q", dateValue)), nil
	}
	ts := time.Unix(seconds, 0)
	if s.cfg.MaxDateSkew >= 0 {
		skew := s.now().Sub(ts)
		if skew < 0 {
			skew = -skew
		}
		if skew > s.cfg.MaxDateSkew {
			return domain.Next(), nil
		}
	}
	if signature == "" {
		return domain.Next(), nil
	}
	actor, err := s.resolver.VerifyToken(ctx, req.Username, ts, s.cfg.Host, s.cfg.Path, signature)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to verify token %q: %w", req.Username, err)
	}
	if actor == nil || !actor.Policy.ValidAt(s.now()) {
		return domain.Next(), nil
	}
	return s.registerOK(req), nil
}

// registerOK builds the accept response, forcing a clean session when
// configured and the client did not ask for one.
func (s *Service) registerOK(req *domain.RegisterRequest) domain.Response {
	if s.cfg.ForceCleanSession && (req.CleanSession == nil || !*req.CleanSession) {
		clean := true
		return domain.OKWithModifiers(&domain.RegisterModifiers{CleanSession: &clean})
	}
	return domain.OK()
}

// AuthorizeSubscribe answers the subscribe hook. The username is the
// token ID established at register time.
func (s *Service) AuthorizeSubscribe(ctx context.Context, req *domain.SubscribeRequest) (domain.Response, error) {
	if req == nil || req.Username == "" {
		return domain.Next(), nil
	}
	actor, err := s.resolver.ResolveToken(ctx, req.Username)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to resolve token %q: %w", req.Username, err)
	}
	if actor == nil || !actor.Policy.ValidAt(s.now()) {
		return domain.Next(), nil
	}
	topics, changed := s.evaluator.EvaluateSubscribe(actor, req.Topics)
	if !changed {
		return domain.OK(), nil
	}
	return domain.OKWithTopics(topics), nil
}

// AuthorizePublish answers the publish hook. Only trusted-transport
// node identities may publish.
func (s *Service) AuthorizePublish(ctx context.Context, req *domain.PublishRequest) (domain.Response, error) {
	if req == nil || !strings.EqualFold(req.Username, s.cfg.PublishUsername) {
		return domain.Next(), nil
	}
	nodeID, err := strconv.ParseInt(req.ClientID, 10, 64)
	if err != nil {
		return domain.Next(), nil
	}
	actor, err := s.resolver.ResolveNode(ctx, nodeID)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to resolve node %d: %w", nodeID, err)
	}
	if actor == nil || !actor.Policy.ValidAt(s.now()) {
		return domain.Next(), nil
	}
	msg, modified := s.evaluator.EvaluatePublish(actor, req)
	if msg == nil {
		return domain.Next(), nil
	}
	s.recordPublish(actor, nodeID, msg)
	if !modified {
		return domain.OK(), nil
	}
	return domain.OKWithModifiers(publishModifiers(req, msg)), nil
}

// recordPublish dispatches the audit event. Best-effort: topics the
// grammar cannot decompose are skipped.
func (s *Service) recordPublish(actor *domain.Actor, nodeID int64, msg *domain.PublishRequest) {
	if s.audit == nil {
		return
	}
	_, source, _, ok := s.evaluator.SplitTopic(msg.Topic)
	if !ok {
		return
	}
	s.audit.RecordPublish(actor, nodeID, strings.Trim(source, "/"), s.now(), len(msg.Payload))
}

// publishModifiers captures only the fields the evaluator changed.
func publishModifiers(req, msg *domain.PublishRequest) *domain.PublishModifiers {
	mods := &domain.PublishModifiers{}
	if msg.Topic != req.Topic {
		mods.Topic = msg.Topic
	}
	if msg.Qos != req.Qos {
		qos := msg.Qos
		mods.Qos = &qos
	}
	if !bytes.Equal(msg.Payload, req.Payload) {
		mods.Payload = msg.Payload
	}
	if msg.Retain != req.Retain {
		retain := msg.Retain
		mods.Retain = &retain
	}
	return mods
}

// parsePasswordTokens splits a delimited key=value credential string.
// Both ";" and "," separate pairs; pairs without "=" are skipped.
func parsePasswordTokens(password string) map[string]string {
	tokens := make(map[string]string)
	pairs := strings.FieldsFunc(password, func(r rune) bool { return r == ';' || r == ',' })
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		tokens[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return tokens
}
