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

// Package main is the entry point for the fluxhook webhook service.
//
// The service answers MQTT broker auth webhooks: it authenticates
// connecting clients, authorizes subscriptions against per-identity
// policies, and gates publishes, recording accepted publish events to
// an audit sink.
//
// Usage:
//
//	./hookd
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	CONFIG_FILE - optional YAML configuration file
//	DATABASE_HOST, DATABASE_PORT, DATABASE_NAME, DATABASE_USER,
//	DATABASE_PASSWORD, DATABASE_SSLMODE - credential store connection
//	DATABASE_URL - full connection string, overrides the above
//	REDIS_ADDR - optional actor cache address
//	PUBLISH_USERNAME, MAX_DATE_SKEW, FORCE_CLEAN_SESSION,
//	HOOK_HOST, HOOK_PATH - decision service settings
package main

import (
	"fluxhook/hookd"
)

func main() {
	hookd.Run()
}
