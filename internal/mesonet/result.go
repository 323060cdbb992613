package mesonet

import "fmt"

// ResultKind tags the outcome of one API call
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultTimeout
	ResultTransportError
	ResultUpstreamError
	ResultDataShapeError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultTimeout:
		return "timeout"
	case ResultTransportError:
		return "transport_error"
	case ResultUpstreamError:
		return "upstream_error"
	case ResultDataShapeError:
		return "data_shape_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the tagged outcome of a measurements query
type Result struct {
	Kind    ResultKind
	Samples []Sample
	Err     error
}

// OK reports whether the call succeeded
func (r Result) OK() bool {
	return r.Kind == ResultOK
}

// Empty reports whether the call succeeded but returned no samples
func (r Result) Empty() bool {
	return r.Kind == ResultOK && len(r.Samples) == 0
}

// OKResult wraps samples in a successful result
func OKResult(samples []Sample) Result {
	return Result{Kind: ResultOK, Samples: samples}
}

func transportResult(err error) Result {
	return Result{Kind: ResultTransportError, Err: err}
}

// UpstreamError is returned when the API answers with a non-2xx status
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status code %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status code %d", e.Endpoint, e.StatusCode)
}
