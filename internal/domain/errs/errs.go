// Package errs holds the error kinds shared by the identity core, the token
// issuer and the config loader. Concrete errors wrap one or more kinds and are
// matched with errors.Is; the HTTP layer maps kinds to status codes.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kinds.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrCredential     = errors.New("invalid credentials")
	ErrConfiguration  = errors.New("configuration error")
	ErrPartialFailure = errors.New("partial failure")
)

// Error is a concrete outcome with a user-facing message.
type Error struct {
	msg   string
	kinds []error
}

// New returns an error reporting msg that matches every kind given.
func New(msg string, kinds ...error) *Error {
	return &Error{msg: msg, kinds: kinds}
}

func (e *Error) Error() string   { return e.msg }
func (e *Error) Unwrap() []error { return e.kinds }

// ─── Validation ───

// ValidationError aggregates field-level problems of one request.
type ValidationError struct {
	Fields map[string]string
}

// Add records a problem for field. The first problem per field wins.
func (e *ValidationError) Add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = problem
	}
}

// OrNil returns e when it holds at least one problem.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is a shortcut for a single-field ValidationError.
func Invalid(field, problem string) error {
	v := &ValidationError{}
	v.Add(field, problem)
	return v
}

// ─── Partial failure ───

// PartialFailure reports a best-effort batch where some items failed.
// Items that succeeded are not rolled back.
type PartialFailure struct {
	Op        string
	Succeeded []string
	Failed    map[string]error
}

// Fail records the failure of item.
func (p *PartialFailure) Fail(item string, err error) {
	if p.Failed == nil {
		p.Failed = make(map[string]error)
	}
	p.Failed[item] = err
}

// FailedItems returns the failed item names, sorted.
func (p *PartialFailure) FailedItems() []string {
	out := make([]string, 0, len(p.Failed))
	for k := range p.Failed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OrNil returns p when at least one item failed.
func (p *PartialFailure) OrNil() error {
	if p == nil || len(p.Failed) == 0 {
		return nil
	}
	return p
}

func (p *PartialFailure) Error() string {
	items := p.FailedItems()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%v)", it, p.Failed[it]))
	}
	return fmt.Sprintf("%s: %d of %d failed: %s",
		p.Op, len(items), len(items)+len(p.Succeeded), strings.Join(parts, ", "))
}

func (p *PartialFailure) Is(target error) bool { return target == ErrPartialFailure }

// ─── Configuration ───

// ConfigurationError names a setting that prevents the process from serving.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
