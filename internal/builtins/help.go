// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// RegisterHelp registers help. It lists the registry it is registered in.
func RegisterHelp(r Registry) {
	r.Register(Builtin{
		Name: "help",
		Desc: "List the builtins",
		Run: func(_ context.Context, h Host, _ []string) Status {
			tw := tabwriter.NewWriter(h.Stdout(), 0, 8, 2, ' ', 0)

			for _, name := range r.Names() {
				fmt.Fprintf(tw, "%s\t%s\n", name, r[name].Desc) //nolint:errcheck
			}

			if err := tw.Flush(); err != nil {
				return Error
			}

			return OK
		},
	})
}
