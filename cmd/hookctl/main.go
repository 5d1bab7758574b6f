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

// Package main implements the hookctl CLI for exercising a running
// fluxhook service: it builds hook payloads from flags and prints the
// decision, which makes credential and policy problems debuggable
// without a broker in the loop.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fluxhook/domain"
	"fluxhook/hookd"
)

var version = "1.0.0"

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:     "hookctl",
		Short:   "FluxHook CLI tool",
		Long:    `hookctl sends broker-style hook requests to a running fluxhook service and prints the decision.`,
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "fluxhook base URL")

	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(subscribeCmd())
	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// registerCmd sends an auth_on_register hook. When --signature is set
// the token credential is composed from --date (default now) and the
// signature, mirroring what a token client would present.
func registerCmd() *cobra.Command {
	var (
		username  string
		clientID  string
		password  string
		signature string
		date      int64
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Send an auth_on_register hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if signature != "" {
				if date == 0 {
					date = time.Now().Unix()
				}
				password = fmt.Sprintf("Date=%d;Signature=%s", date, signature)
			}
			return postHook(hookd.HookAuthOnRegister, domain.RegisterRequest{
				Username: username,
				Password: password,
				ClientID: clientID,
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username (token ID or trusted identity)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "MQTT client ID")
	cmd.Flags().StringVar(&password, "password", "", "raw password field")
	cmd.Flags().StringVar(&signature, "signature", "", "credential signature; composes the password field")
	cmd.Flags().Int64Var(&date, "date", 0, "credential date in epoch seconds (default now)")
	return cmd
}

func subscribeCmd() *cobra.Command {
	var (
		username string
		clientID string
		qos      int
	)
	cmd := &cobra.Command{
		Use:   "subscribe <topic> [topic...]",
		Short: "Send an auth_on_subscribe hook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := domain.QosForCode(qos)
			if err != nil {
				return err
			}
			topics := make(domain.TopicSettings, 0, len(args))
			for _, topic := range args {
				topics = append(topics, domain.TopicSubscription{Topic: topic, Qos: q})
			}
			return postHook(hookd.HookAuthOnSubscribe, domain.SubscribeRequest{
				Username: username,
				ClientID: clientID,
				Topics:   topics,
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "token ID")
	cmd.Flags().StringVar(&clientID, "client-id", "", "MQTT client ID")
	cmd.Flags().IntVar(&qos, "qos", 0, "requested QoS for every topic")
	return cmd
}

func publishCmd() *cobra.Command {
	var (
		username string
		clientID string
		qos      int
		payload  string
		retain   bool
	)
	cmd := &cobra.Command{
		Use:   "publish <topic>",
		Short: "Send an auth_on_publish hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := domain.QosForCode(qos)
			if err != nil {
				return err
			}
			return postHook(hookd.HookAuthOnPublish, domain.PublishRequest{
				Username: username,
				ClientID: clientID,
				Topic:    args[0],
				Qos:      q,
				Payload:  []byte(payload),
				Retain:   retain,
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "solarnode", "publish username")
	cmd.Flags().StringVar(&clientID, "client-id", "", "node ID presented as the MQTT client ID")
	cmd.Flags().IntVar(&qos, "qos", 0, "message QoS")
	cmd.Flags().StringVar(&payload, "payload", "", "message payload")
	cmd.Flags().BoolVar(&retain, "retain", false, "retain flag")
	return cmd
}

func postHook(hook string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+"/hook", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("vernemq-hook", hook)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", resp.Status, data)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hook request failed with status %d", resp.StatusCode)
	}
	return nil
}
