// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/authward/authward/internal/config"
)

// Status is the health summary the status command reports.
type Status struct {
	Addr    string `json:"addr"`
	Running bool   `json:"running"`
	Ready   bool   `json:"ready"`
	Error   string `json:"error,omitempty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show health of the running AuthWard sidecar",
		Long:  `Probe the liveness and readiness endpoints of a running serve process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	settings, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	status := probe(settings.Observability.Addr)

	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch {
	case !status.Running:
		cmd.Printf("authward at %s: stopped (%s)\n", status.Addr, status.Error)
	case status.Ready:
		cmd.Printf("authward at %s: running, ready\n", status.Addr)
	default:
		cmd.Printf("authward at %s: running, not ready\n", status.Addr)
	}
	return nil
}

func probe(addr string) Status {
	status := Status{Addr: addr}
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://%s/healthz/liveness", addr))
	if err != nil {
		status.Error = err.Error()
		return status
	}
	drainAndClose(resp.Body)
	status.Running = resp.StatusCode == http.StatusOK

	resp, err = client.Get(fmt.Sprintf("http://%s/healthz/readiness", addr))
	if err != nil {
		return status
	}
	drainAndClose(resp.Body)
	status.Ready = resp.StatusCode == http.StatusOK
	return status
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
