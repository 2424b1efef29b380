// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package auth holds the identity model and the session registry that marks
// which identities currently hold an authenticated session.
package auth
