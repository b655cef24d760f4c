// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
)

// RegisterAlias registers alias, unalias and lsalias.
func RegisterAlias(r Registry) {
	r.Register(Builtin{Name: "alias", Desc: "Define an alias", Run: Alias})
	r.Register(Builtin{Name: "unalias", Desc: "Remove aliases", Run: Unalias})
	r.Register(Builtin{Name: "lsalias", Desc: "List aliases", Run: LsAlias})
}

// Alias defines an alias: alias name = text...
// Without arguments it lists the aliases.
func Alias(ctx context.Context, h Host, args []string) Status {
	if len(args) == 1 {
		return LsAlias(ctx, h, args)
	}

	name, text, ok := splitAssignment(args[1:])
	if !ok || text == "" {
		h.Reporter().Errorf("%s: malformed syntax (expected 'name = text')", args[0])
		return Error
	}

	if err := h.Symbols().SetAlias(name, text); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	return OK
}

// Unalias removes each named alias.
func Unalias(_ context.Context, h Host, args []string) Status {
	if len(args) < 2 {
		h.Reporter().Errorf("%s: insufficient arguments.", args[0])
		return Error
	}

	status := OK

	for _, name := range args[1:] {
		if !h.Symbols().Unalias(name) {
			h.Reporter().Errorf("%s: %s: not found", args[0], name)
			status = Error
		}
	}

	return status
}

// LsAlias prints every alias.
func LsAlias(_ context.Context, h Host, _ []string) Status {
	for _, b := range h.Symbols().Aliases() {
		fmt.Fprintf(h.Stdout(), "%s = %s\n", b.Name, b.Value) //nolint:errcheck
	}

	return OK
}
