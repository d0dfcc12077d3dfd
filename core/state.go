package core

import (
	"slices"

	"github.com/huangsam/stepviz/schema"
)

// Status is the coarse state of the chart view.
type Status string

// All view statuses.
const (
	StatusIdle      Status = "idle"
	StatusComputing Status = "computing"
	StatusError     Status = "error"
)

// ViewState is everything a chart view needs to draw itself.
// Result always belongs to the Selection it was computed for, which may lag
// behind Pending while a newer request is in flight.
type ViewState struct {
	Status    Status                   `json:"status"`
	Computing bool                     `json:"computing"`
	Result    schema.DownsampledSeries `json:"result"`
	Selection []string                 `json:"selection"` // Selection that produced Result
	Pending   []string                 `json:"pending"`   // Most recently requested selection
	Err       error                    `json:"-"`
	Latest    uint64                   `json:"latest"`  // Sequence of the newest request
	Applied   uint64                   `json:"applied"` // Sequence whose outcome is reflected
}

// ErrMessage returns the error text or an empty string.
func (s ViewState) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Clone returns a copy that shares no slices with s.
func (s ViewState) Clone() ViewState {
	s.Result = slices.Clone(s.Result)
	s.Selection = slices.Clone(s.Selection)
	s.Pending = slices.Clone(s.Pending)
	return s
}

// Event is a state transition input for Reduce.
type Event interface{ isEvent() }

// RequestIssued records that a computation for Selection was dispatched.
type RequestIssued struct {
	Seq       uint64
	Selection []string
}

// SelectionCleared records that the selection became empty. Nothing is dispatched.
type SelectionCleared struct{ Seq uint64 }

// ResultDelivered carries a finished computation.
type ResultDelivered struct {
	Seq       uint64
	Selection []string
	Result    schema.DownsampledSeries
}

// ComputationFailed carries a failed computation.
type ComputationFailed struct {
	Seq uint64
	Err error
}

// WorkerLost reports that the background context is gone. It is never stale.
type WorkerLost struct{ Err error }

func (RequestIssued) isEvent()     {}
func (SelectionCleared) isEvent()  {}
func (ResultDelivered) isEvent()   {}
func (ComputationFailed) isEvent() {}
func (WorkerLost) isEvent()        {}

// Reduce applies one event to a state and returns the next state.
// Outcomes whose sequence is not the latest issued one are ignored, so a slow
// response can never overwrite the result of a newer request.
func Reduce(s ViewState, e Event) ViewState {
	switch ev := e.(type) {
	case RequestIssued:
		s.Latest = ev.Seq
		s.Pending = slices.Clone(ev.Selection)
		s.Computing = true
		s.Status = StatusComputing
		s.Err = nil
	case SelectionCleared:
		s.Latest = ev.Seq
		s.Applied = ev.Seq
		s.Pending = nil
		s.Selection = nil
		s.Result = schema.DownsampledSeries{}
		s.Computing = false
		s.Status = StatusIdle
		s.Err = nil
	case ResultDelivered:
		if ev.Seq != s.Latest {
			return s
		}
		s.Applied = ev.Seq
		s.Result = ev.Result
		s.Selection = slices.Clone(ev.Selection)
		s.Computing = false
		s.Status = StatusIdle
		s.Err = nil
	case ComputationFailed:
		if ev.Seq != s.Latest {
			return s
		}
		s.Applied = ev.Seq
		s.Computing = false
		s.Status = StatusError
		s.Err = ev.Err
	case WorkerLost:
		s.Applied = s.Latest
		s.Computing = false
		s.Status = StatusError
		s.Err = ev.Err
	}
	return s
}
