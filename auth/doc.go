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

// Package auth makes the broker hook decisions. Service orchestrates
// the per-hook ladders (authenticate, authorize subscribe, authorize
// publish), Evaluator applies an actor's policy to topics, and
// IdentityResolver abstracts the credential store. PostgresResolver,
// CachingResolver, and AuditQueue are the production implementations
// of the collaborator boundaries.
package auth
