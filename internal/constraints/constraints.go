// Copyright 2025 The Streambed Authors
// SPDX-License-Identifier: Apache-2.0

// Package constraints re-exports the type sets the library needs from
// golang.org/x/exp/constraints under its own import path, so consumers of
// the root module never depend on the experimental module directly.
package constraints

import "golang.org/x/exp/constraints"

// Ordered is satisfied by any type supporting the < <= >= > operators. It is
// the constraint behind the Min/Max aggregates.
type Ordered = constraints.Ordered
