package calculator

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestPartitionRows(t *testing.T) {
	cases := []struct {
		height, workers, want int
	}{
		{10, 4, 4},
		{10, 1, 1},
		{3, 8, 3},
		{100, 16, 16},
		{7, 7, 7},
	}
	for _, tc := range cases {
		tasks := partitionRows(0, tc.height, tc.workers)
		if len(tasks) != tc.want {
			t.Errorf("%d rows / %d workers: %d tasks, want %d", tc.height, tc.workers, len(tasks), tc.want)
			continue
		}
		next := 0
		for i, task := range tasks {
			if task.id != i || task.start != next || task.end <= task.start {
				t.Errorf("%d rows / %d workers: bad task %+v", tc.height, tc.workers, task)
			}
			size := task.end - task.start
			if size < tc.height/len(tasks) || size > tc.height/len(tasks)+1 {
				t.Errorf("unbalanced task %+v", task)
			}
			next = task.end
		}
		if next != tc.height {
			t.Errorf("%d rows / %d workers: covered %d rows", tc.height, tc.workers, next)
		}
	}
	if partitionRows(0, 0, 4) != nil {
		t.Error("empty range should give no tasks")
	}
}

func TestExecutorDispatchTask(t *testing.T) {
	var rows int64
	e := newExecutor(3, func(t task) error {
		atomic.AddInt64(&rows, int64(t.end-t.start))
		return nil
	})
	e.run()
	defer e.stop()

	tasks := partitionRows(0, 20, 3)
	for step := 0; step < 5; step++ {
		if _, err := e.dispatchTask(tasks); err != nil {
			t.Fatal(err)
		}
		// dispatchTask is a barrier: every row is done when it returns
		if got := atomic.LoadInt64(&rows); got != int64(20*(step+1)) {
			t.Fatalf("step %d: %d rows processed", step, got)
		}
	}
}

func TestExecutorFirstErrorWins(t *testing.T) {
	errLow, errHigh := errors.New("low"), errors.New("high")
	e := newExecutor(4, func(t task) error {
		switch t.id {
		case 1:
			return errLow
		case 3:
			return errHigh
		}
		return nil
	})
	e.run()
	defer e.stop()

	tasks := partitionRows(0, 8, 4)
	if _, err := e.dispatchTask(tasks); err != errLow {
		t.Fatalf("err = %v", err)
	}
}
