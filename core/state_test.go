package core

import (
	"errors"
	"testing"

	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	resultA := schema.DownsampledSeries{{Metric: "loss"}}
	resultB := schema.DownsampledSeries{{Metric: "accuracy"}}
	boom := errors.New("boom")

	t.Run("request then result", func(t *testing.T) {
		s := Reduce(ViewState{Status: StatusIdle}, RequestIssued{Seq: 1, Selection: []string{"a"}})
		assert.Equal(t, StatusComputing, s.Status)
		assert.True(t, s.Computing)
		assert.Equal(t, []string{"a"}, s.Pending)

		s = Reduce(s, ResultDelivered{Seq: 1, Selection: []string{"a"}, Result: resultA})
		assert.Equal(t, StatusIdle, s.Status)
		assert.False(t, s.Computing)
		assert.Equal(t, resultA, s.Result)
		assert.Equal(t, []string{"a"}, s.Selection)
		assert.Equal(t, uint64(1), s.Applied)
	})

	t.Run("stale result is ignored", func(t *testing.T) {
		s := Reduce(ViewState{}, RequestIssued{Seq: 1, Selection: []string{"a"}})
		s = Reduce(s, RequestIssued{Seq: 2, Selection: []string{"b"}})
		s = Reduce(s, ResultDelivered{Seq: 1, Selection: []string{"a"}, Result: resultA})
		assert.True(t, s.Computing)
		assert.Nil(t, s.Result)

		s = Reduce(s, ResultDelivered{Seq: 2, Selection: []string{"b"}, Result: resultB})
		assert.Equal(t, resultB, s.Result)
		assert.False(t, s.Computing)
	})

	t.Run("failure keeps last good result", func(t *testing.T) {
		s := Reduce(ViewState{}, RequestIssued{Seq: 1})
		s = Reduce(s, ResultDelivered{Seq: 1, Result: resultA})
		s = Reduce(s, RequestIssued{Seq: 2})
		s = Reduce(s, ComputationFailed{Seq: 2, Err: boom})
		assert.Equal(t, StatusError, s.Status)
		assert.False(t, s.Computing)
		assert.Equal(t, resultA, s.Result)
		assert.Equal(t, "boom", s.ErrMessage())

		s = Reduce(s, RequestIssued{Seq: 3})
		assert.NoError(t, s.Err)
	})

	t.Run("stale failure is ignored", func(t *testing.T) {
		s := Reduce(ViewState{}, RequestIssued{Seq: 1})
		s = Reduce(s, RequestIssued{Seq: 2})
		s = Reduce(s, ComputationFailed{Seq: 1, Err: boom})
		assert.Equal(t, StatusComputing, s.Status)
		assert.NoError(t, s.Err)
	})

	t.Run("cleared selection", func(t *testing.T) {
		s := Reduce(ViewState{}, RequestIssued{Seq: 1})
		s = Reduce(s, ResultDelivered{Seq: 1, Result: resultA})
		s = Reduce(s, RequestIssued{Seq: 2})
		s = Reduce(s, SelectionCleared{Seq: 3})
		assert.False(t, s.Computing)
		assert.Equal(t, StatusIdle, s.Status)
		assert.Empty(t, s.Result)
		assert.Nil(t, s.Pending)

		s = Reduce(s, ResultDelivered{Seq: 2, Result: resultB})
		assert.Empty(t, s.Result, "pending work is dropped once the selection is cleared")
	})

	t.Run("worker lost", func(t *testing.T) {
		s := Reduce(ViewState{}, RequestIssued{Seq: 1})
		s = Reduce(s, ResultDelivered{Seq: 1, Result: resultA})
		s = Reduce(s, RequestIssued{Seq: 2})
		s = Reduce(s, WorkerLost{Err: boom})
		assert.Equal(t, StatusError, s.Status)
		assert.False(t, s.Computing)
		assert.Equal(t, resultA, s.Result)
	})
}

func TestViewStateClone(t *testing.T) {
	s := ViewState{Selection: []string{"a"}, Pending: []string{"b"}, Result: schema.DownsampledSeries{{Metric: "m"}}}
	c := s.Clone()
	c.Selection[0] = "x"
	c.Pending[0] = "y"
	c.Result[0].Metric = "z"
	assert.Equal(t, "a", s.Selection[0])
	assert.Equal(t, "b", s.Pending[0])
	assert.Equal(t, "m", s.Result[0].Metric)
}
