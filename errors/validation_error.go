package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError collects every problem found while validating an input
// so callers can report them in one response instead of one at a time.
type ValidationError struct {
	Errors []error `json:"errors"`
}

func (c *ValidationError) Add(err error) {
	if err == nil {
		return
	}
	c.Errors = append(c.Errors, err)
}

// Addf formats and adds a new validation failure.
func (c *ValidationError) Addf(format string, args ...any) {
	c.Errors = append(c.Errors, fmt.Errorf(format, args...))
}

func (c *ValidationError) HasError() bool {
	return len(c.Errors) > 0
}

// Messages returns the individual failures as plain strings, for JSON bodies.
func (c *ValidationError) Messages() []string {
	out := make([]string, 0, len(c.Errors))
	for _, err := range c.Errors {
		out = append(out, err.Error())
	}
	return out
}

func (c *ValidationError) Error() string {
	if len(c.Errors) == 0 {
		return ""
	}
	return strings.ReplaceAll(errors.Join(c.Errors...).Error(), "\n", "; ")
}

// OrNil returns the aggregate only when something was added, so it can be
// returned directly as an error value.
func (c *ValidationError) OrNil() error {
	if !c.HasError() {
		return nil
	}
	return c
}
