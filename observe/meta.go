package observe

import "strings"

// FuncMeta describes a memoized function for telemetry purposes.
type FuncMeta struct {
	Name       string // Function name (required)
	InstanceID string // Distinguishes wrappers around the same function (optional)
	Algorithm  string // Eviction algorithm name, e.g. "LRU" (optional)
}

// SpanName returns the deterministic span name for computations of this
// function. Format: memo.compute.<name>
func (m FuncMeta) SpanName() string {
	return "memo.compute." + m.Name
}

// FuncID returns the name qualified by the instance ID when one is set.
func (m FuncMeta) FuncID() string {
	if m.InstanceID == "" {
		return m.Name
	}
	return m.Name + "#" + m.InstanceID
}

// Validate reports whether the metadata is usable.
func (m FuncMeta) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMissingFuncName
	}
	return nil
}
