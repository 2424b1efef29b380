// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package antibot rejects bursts of suspicious connection attempts and
// remembers which identities it forcibly disconnected.
package antibot

import (
	"log/slog"
	"sync"
	"time"
)

// Default sensor tuning.
const (
	// DefaultThreshold is the number of connections within the interval
	// that flips the sensor into reject mode.
	DefaultThreshold = 5

	// DefaultInterval is the sliding window length.
	DefaultInterval = 5 * time.Second

	// DefaultRejectDuration is how long reject mode lasts before the
	// sensor resets.
	DefaultRejectDuration = 10 * time.Minute
)

// Sensor is the burst-detection signal the guard delegates to.
type Sensor interface {
	// RecordConnection feeds one connection attempt into the window.
	RecordConnection()

	// Rejecting reports whether the current inflow is judged anomalous.
	Rejecting() bool
}

// WindowSensorConfig tunes a WindowSensor. Zero values fall back to the
// package defaults.
type WindowSensorConfig struct {
	Threshold      int
	Interval       time.Duration
	RejectDuration time.Duration
}

// WindowSensor counts connections over a sliding window. Once the count
// within one interval exceeds the threshold it enters reject mode for the
// configured duration, then resets. The reset also fires the reset hook,
// which the guard uses to clear its kicked-set. Safe for concurrent use.
type WindowSensor struct {
	mu             sync.Mutex
	threshold      int
	interval       time.Duration
	rejectDuration time.Duration

	windowStart time.Time
	count       int
	rejecting   bool
	resetTimer  *time.Timer
	resetHook   func()
}

// NewWindowSensor creates a sensor with the given tuning.
func NewWindowSensor(cfg WindowSensorConfig) *WindowSensor {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	rejectDuration := cfg.RejectDuration
	if rejectDuration <= 0 {
		rejectDuration = DefaultRejectDuration
	}
	return &WindowSensor{
		threshold:      threshold,
		interval:       interval,
		rejectDuration: rejectDuration,
	}
}

// SetResetHook registers a function called after reject mode ends.
// Must be called before the sensor sees traffic.
func (s *WindowSensor) SetResetHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetHook = fn
}

// RecordConnection implements Sensor.
func (s *WindowSensor) RecordConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.windowStart) > s.interval {
		s.windowStart = now
		s.count = 0
	}
	s.count++

	if !s.rejecting && s.count > s.threshold {
		s.rejecting = true
		s.resetTimer = time.AfterFunc(s.rejectDuration, s.expire)
		slog.Warn("antibot sensor entered reject mode",
			"connections", s.count,
			"interval", s.interval.String(),
			"reject_duration", s.rejectDuration.String(),
		)
	}
}

// Rejecting implements Sensor.
func (s *WindowSensor) Rejecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejecting
}

// Reset leaves reject mode immediately and fires the reset hook.
func (s *WindowSensor) Reset() {
	s.mu.Lock()
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.mu.Unlock()
	s.expire()
}

// Close stops the pending reset timer. The sensor must not be used after
// Close.
func (s *WindowSensor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *WindowSensor) expire() {
	s.mu.Lock()
	wasRejecting := s.rejecting
	s.rejecting = false
	s.count = 0
	s.windowStart = time.Time{}
	hook := s.resetHook
	s.mu.Unlock()

	if wasRejecting && hook != nil {
		hook()
	}
}
