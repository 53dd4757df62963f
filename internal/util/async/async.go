package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently and waits for all of them to finish.
// When a task fails, the context passed to the others is cancelled so in-flight
// work is aborted. The result is nil or a *multierror.Error holding one entry
// per failed task, each prefixed with the task name.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "10.0.0.5", Func: stopAgent},
//	    {Name: "10.0.0.6", Func: stopAgent},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)

	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task.Func(ctx); err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", task.Name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}
	wg.Wait()

	return result.ErrorOrNil()
}

