package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/elemsel"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	if c.Legacy {
		set := elemsel.NewLegacySelectorSet(c.Selectors)
		if set.Len() == 0 {
			fmt.Fprintln(deps.Stdout, "empty selector list: documents pass through")
			return nil
		}
		for i, key := range set {
			fmt.Fprintf(deps.Stdout, "%d. %s\n", i+1, key)
		}
		return nil
	}

	set, err := elemsel.ParseSelectorList(c.Selectors)
	if err != nil {
		var mse *elemsel.MalformedSelectorError
		if errors.As(err, &mse) {
			fmt.Fprintf(deps.Stderr, "error: %s\n", mse.Reason)
			fmt.Fprintf(deps.Stderr, "  %s\n  %s^\n", mse.Selector, strings.Repeat(" ", mse.Pos))
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		}
		return err
	}

	if set.Len() == 0 {
		fmt.Fprintln(deps.Stdout, "empty selector list: documents pass through")
		return nil
	}

	for i, compound := range set {
		fmt.Fprintf(deps.Stdout, "%d. %s\n", i+1, compound.Source)
		for _, cr := range compound.Criteria {
			fmt.Fprintf(deps.Stdout, "     %-9s %s\n", cr.Kind, cr.String())
		}
	}
	return nil
}
