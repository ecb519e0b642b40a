package domain

import "fmt"

// ConfigError signals malformed or missing configuration: an invalid
// KV document, an unsupported record type for a mode, an out-of-range
// port or TTL. Fatal to the invocation (spec.md §7).
type ConfigError struct {
	Op      string
	Message string
	Err     error
}

func NewConfigError(op, message string, err error) *ConfigError {
	return &ConfigError{Op: op, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Op, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderError wraps any downstream provider (KV, DNS, instance,
// scaling group) call failure with enough context to identify the
// backend call (spec.md §4.2, §7).
type ProviderError struct {
	Provider string
	Op       string
	Message  string
	Err      error
}

func NewProviderError(provider, op, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider %s: %s: %v", e.Provider, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider %s: %s", e.Provider, e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// LockContention means acquire returned false within bounded
// attempts. Treated like a ProviderError scoped to the record
// (spec.md §7).
type LockContention struct {
	LockKey string
}

func NewLockContention(lockKey string) *LockContention {
	return &LockContention{LockKey: lockKey}
}

func (e *LockContention) Error() string {
	return fmt.Sprintf("lock contention on %s: exhausted bounded acquire attempts", e.LockKey)
}

// BusinessError signals an invariant violation, e.g. mismatched
// sg_names within a single worker's config list. Fatal to the worker
// (spec.md §7).
type BusinessError struct {
	Message string
}

func NewBusinessError(message string) *BusinessError {
	return &BusinessError{Message: message}
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("business rule violated: %s", e.Message)
}

// TransientProbeFailure is not an exception: it is a negative
// readiness/health result that drives state-machine flow (spec.md
// §7). Coordinators branch on this value directly; it is defined here
// so callers that do propagate it through an error-shaped path (e.g.
// logging) have a named type to match on.
type TransientProbeFailure struct {
	Probe  string // "readiness" or "health"
	Reason string
}

func (e *TransientProbeFailure) Error() string {
	return fmt.Sprintf("%s probe failed: %s", e.Probe, e.Reason)
}
