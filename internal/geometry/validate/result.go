package validate

// ============================================================
// Results
// ============================================================

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Code string

const (
	CodeMissingPoint       Code = "missing_point"
	CodeSamePoint          Code = "same_point"
	CodeDuplicateSegment   Code = "duplicate_segment"
	CodeSegmentTooShort    Code = "segment_too_short"
	CodeSelfIntersecting   Code = "self_intersecting"
	CodeDuplicatePoint     Code = "duplicate_point"
	CodeIsolatedPoint      Code = "isolated_point"
	CodeOrphanedSegment    Code = "orphaned_segment"
	CodeInsufficientPoints Code = "insufficient_points"
	CodePerimeterTooSmall  Code = "perimeter_too_small"
	CodeAreaTooLarge       Code = "area_too_large"
)

// Result is one finding. Errors block finalization and export; warnings are advisory.
type Result struct {
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	EntityIDs []string `json:"entityIds"`
}

func (r Result) IsError() bool {
	return r.Severity == SeverityError
}

type Results []Result

func (rs Results) HasErrors() bool {
	for _, r := range rs {
		if r.IsError() {
			return true
		}
	}
	return false
}

func (rs Results) Errors() Results {
	return rs.filter(SeverityError)
}

func (rs Results) Warnings() Results {
	return rs.filter(SeverityWarning)
}

// Has reports whether any result carries code.
func (rs Results) Has(code Code) bool {
	for _, r := range rs {
		if r.Code == code {
			return true
		}
	}
	return false
}

func (rs Results) filter(sev Severity) Results {
	out := Results{}
	for _, r := range rs {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

func newError(code Code, msg string, ids ...string) *Result {
	return &Result{Code: code, Severity: SeverityError, Message: msg, EntityIDs: nonNil(ids)}
}

func newWarning(code Code, msg string, ids ...string) *Result {
	return &Result{Code: code, Severity: SeverityWarning, Message: msg, EntityIDs: nonNil(ids)}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
