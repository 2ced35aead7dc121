package telemetry

import (
	"strings"
	"sync"
)

type ReportKind int

const (
	REPORT_BROKEN ReportKind = iota
	REPORT_CRITICAL
	REPORT_WARNING
	REPORT_DEBUG
	REPORT_COUNT
)

type Report struct {
	Kind   ReportKind
	Id     string
	Params []any
	Count  int64
}

// Recorder implements API by keeping every report in memory, it is meant
// for asserting on reports in tests.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) add(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Report{Kind: REPORT_BROKEN, Id: id, Params: params})
}

func (r *Recorder) ReportCritical(id string, params ...any) {
	r.add(Report{Kind: REPORT_CRITICAL, Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Report{Kind: REPORT_WARNING, Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Report{Kind: REPORT_DEBUG, Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Report{Kind: REPORT_COUNT, Id: id, Count: count})
}

// Reports returns a copy of the reports of the given kind.
func (r *Recorder) Reports(kind ReportKind) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Contains checks whether a report of the given kind has an id ending in
// idSuffix, which lets callers ignore ScopedAPI namespaces.
func (r *Recorder) Contains(kind ReportKind, idSuffix string) bool {
	for _, report := range r.Reports(kind) {
		if strings.HasSuffix(report.Id, idSuffix) {
			return true
		}
	}
	return false
}
