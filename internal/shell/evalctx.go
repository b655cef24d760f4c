// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"github.com/matt-FFFFFF/tinsh/internal/engine"
)

// evalContext holds the outcomes of one line's stages while it is evaluated.
type evalContext struct {
	outcomes []engine.Outcome
	released bool
}

func (ec *evalContext) record(out engine.Outcome) {
	if ec.released {
		return
	}

	ec.outcomes = append(ec.outcomes, out)
}

// failed returns the number of stages that failed.
func (ec *evalContext) failed() int {
	n := 0

	for _, o := range ec.outcomes {
		if o.Failed {
			n++
		}
	}

	return n
}

// Release drops the line's state. It may be called more than once.
func (ec *evalContext) Release() {
	if ec.released {
		return
	}

	ec.released = true
	ec.outcomes = nil
}
