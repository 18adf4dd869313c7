package calculator

import (
	"time"
)

// 基于行块的任务分配：每个 worker 独占 next 缓冲区中的一段连续行
type task struct {
	id    int
	start int // 起始行（包含）
	end   int // 结束行（不包含）
}

type taskResult struct {
	id  int
	err error
}

type executor struct {
	workers      int
	dispatchChan chan task
	doneChan     chan taskResult
	errs         []error
	f            func(t task) error
}

func newExecutor(workers int, f func(t task) error) *executor {
	return &executor{
		workers:      workers,
		dispatchChan: make(chan task, workers),
		doneChan:     make(chan taskResult, workers),
		errs:         make([]error, workers),
		f:            f,
	}
}

// partitionRows 将 [first, last) 划分为至多 workers 个连续行块，块大小最多相差一行
func partitionRows(first, last, workers int) []task {
	total := last - first
	if total <= 0 || workers < 1 {
		return nil
	}
	if workers > total {
		workers = total
	}
	taskLen, remainder := total/workers, total%workers
	tasks := make([]task, 0, workers)
	start := first
	for i := 0; i < workers; i++ {
		end := start + taskLen
		if i < remainder {
			end++
		}
		tasks = append(tasks, task{id: i, start: start, end: end})
		start = end
	}
	return tasks
}

func (e *executor) run() {
	for i := 0; i < e.workers; i++ {
		go func() {
			for t := range e.dispatchChan {
				e.doneChan <- taskResult{id: t.id, err: e.f(t)}
			}
		}()
	}
}

// dispatchTask 分发任务并等待全部完成，返回 id 最小的任务的错误
func (e *executor) dispatchTask(tasks []task) (time.Duration, error) {
	start := time.Now()
	for _, t := range tasks {
		e.dispatchChan <- t
	}
	for i := range e.errs {
		e.errs[i] = nil
	}
	for range tasks {
		r := <-e.doneChan
		e.errs[r.id] = r.err
	}
	for _, err := range e.errs {
		if err != nil {
			return time.Since(start), err
		}
	}
	return time.Since(start), nil
}

func (e *executor) stop() {
	close(e.dispatchChan)
}
