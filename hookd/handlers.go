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

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fluxhook/domain"
	"fluxhook/shared/logger"
)

// The broker names the hook in this header; the body shape depends on
// the hook.
const hookHeader = "vernemq-hook"

// Supported hook names.
const (
	HookAuthOnRegister  = "auth_on_register"
	HookAuthOnSubscribe = "auth_on_subscribe"
	HookAuthOnPublish   = "auth_on_publish"
)

// DecisionService is the slice of the auth service the HTTP layer
// needs. Satisfied by *auth.Service.
type DecisionService interface {
	Authenticate(ctx context.Context, req *domain.RegisterRequest) (domain.Response, error)
	AuthorizeSubscribe(ctx context.Context, req *domain.SubscribeRequest) (domain.Response, error)
	AuthorizePublish(ctx context.Context, req *domain.PublishRequest) (domain.Response, error)
}

// Server adapts the decision service to the broker webhook wire
// protocol.
type Server struct {
	svc DecisionService
	log *logger.Logger
}

// NewServer creates the HTTP adapter.
func NewServer(svc DecisionService) *Server {
	return &Server{svc: svc, log: logger.New("hookd")}
}

// Routes registers the webhook, health, and metrics endpoints.
func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/hook", s.hookHandler).Methods("POST")
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) hookHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	hook := r.Header.Get(hookHeader)
	start := time.Now()

	var (
		resp     domain.Response
		clientID string
		err      error
	)
	switch hook {
	case HookAuthOnRegister:
		var req domain.RegisterRequest
		if !s.decode(w, r, requestID, hook, &req) {
			return
		}
		clientID = req.ClientID
		resp, err = s.svc.Authenticate(r.Context(), &req)
	case HookAuthOnSubscribe:
		var req domain.SubscribeRequest
		if !s.decode(w, r, requestID, hook, &req) {
			return
		}
		clientID = req.ClientID
		resp, err = s.svc.AuthorizeSubscribe(r.Context(), &req)
	case HookAuthOnPublish:
		var req domain.PublishRequest
		if !s.decode(w, r, requestID, hook, &req) {
			return
		}
		clientID = req.ClientID
		resp, err = s.svc.AuthorizePublish(r.Context(), &req)
	default:
		hookRequests.WithLabelValues(hook, "bad_request").Inc()
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown hook %q", hook))
		return
	}

	if err != nil {
		// infrastructure failure: fail closed rather than answer next
		hookRequests.WithLabelValues(hook, "failure").Inc()
		s.log.Error(clientID, requestID, "hook decision failed",
			map[string]interface{}{"hook": hook, "error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hookRequests.WithLabelValues(hook, string(resp.Status)).Inc()
	hookDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
	s.log.InfoWithDuration(clientID, requestID, "hook decision",
		float64(time.Since(start).Milliseconds()),
		map[string]interface{}{"hook": hook, "result": string(resp.Status)})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, requestID, hook string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		hookRequests.WithLabelValues(hook, "bad_request").Inc()
		s.log.Warn("", requestID, "undecodable hook body",
			map[string]interface{}{"hook": hook, "error": err.Error()})
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "fluxhook",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("", "", "failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
