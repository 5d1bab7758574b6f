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

/*
Package logger emits one JSON document per log line on stdout, suitable
for any log aggregation pipeline that consumes container output.

Each entry carries a timestamp (RFC3339Nano), level, component name,
instance and container identity, and two correlation fields specific to
the hook service: the MQTT client ID of the connection that triggered
the event and the per-request hook ID.

Create a logger per component:

	log := logger.New("auth")

and log with the hook context when one exists:

	log.Info(clientID, requestID, "register accepted", map[string]interface{}{
	    "node_id": nodeID,
	})

The minimum level is read from LOG_LEVEL (DEBUG, INFO, WARN, ERROR);
unset means INFO. Instance identity comes from INSTANCE_ID and the
container hostname. Logger instances are safe for concurrent use.
*/
package logger
