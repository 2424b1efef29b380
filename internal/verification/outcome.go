// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package verification runs the fail-fast checks that decide whether a
// connection may join. Checks are pure over the identity, the resolved
// flags, and the current config; only the antibot check has the side
// effect of recording the attempt. No check blocks on I/O.
package verification

import "github.com/authward/authward/internal/messages"

// Outcome is a check or pipeline result. A Deny carries the reason code
// and positional arguments; it never carries formatted user text.
type Outcome struct {
	Reason messages.Key
	Args   []string

	denied bool
}

// Allow is the passing outcome.
func Allow() Outcome { return Outcome{} }

// Deny refuses with a reason code.
func Deny(reason messages.Key, args ...string) Outcome {
	return Outcome{Reason: reason, Args: args, denied: true}
}

// Denied reports whether the outcome refuses the connection.
func (o Outcome) Denied() bool { return o.denied }
