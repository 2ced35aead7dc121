package telemetry

import (
	"fmt"
	"slc-balance/internal/components/assert"
)

// API is an abstraction over logging/metrics.
// This allows for assertions and tests for working logging/metrics to exist.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	//
	// The `id` identifies the broken **component**, not the specific line that broke, ex. a failed
	// request while logging in is reported under `client.login`, and the detail goes into the params
	// or a wrapped error.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	ReportBroken(id string, params ...any)

	// ReportCritical reports a failure that prevents the whole operation from producing anything
	// useful, like an authentication handshake that was rejected.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportCritical(id string, params ...any)

	// ReportWarning reports a scenario that does not necessarily indicate brokenness, but may be subject to investigation
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports some debug information that will be ignored in production
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of a specific event at the current time, these counts should
	// not be summed but interpreted as points of data over time.
	ReportCount(id string, count int64)
}

// ScopedAPI is a telemetry API that attaches a namespace for a given API, kind of like creating a
// "sub" logger using things like log.New(), in which you can define the prefix for the logs.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI creates a ScopedAPI out of a given namespace and another api.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	assert.NotEmptyStr("namespace", namespace)
	assert.NotNil("inner", inner)
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportCritical(id string, params ...any) {
	s.inner.ReportCritical(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
