// Package batch executes large numbers of independent store operations and observes their throughput.
//
// An Executor runs operations in one of three modes:
//
//   - RunChunked dispatches fixed-size chunks concurrently, awaiting each chunk before starting the next.
//   - RunConcurrent dispatches all operations at once while a Tracker samples progress.
//   - RunSequential runs operations one at a time, in order, while a Tracker samples progress.
//
// A Tracker samples the number of completed operations on a fixed interval and hands every Sample
// to a Reporter (log lines, metrics gauges, JSON lines, or any combination via MultiReporter).
//
// Example:
//
//	executor, err := batch.NewExecutor(batch.WithChunkSize(5000), batch.WithLogger(slog.Default()))
//	if err != nil {
//		return err
//	}
//
//	ops := make([]batch.Operation, 0, len(persons))
//	for _, person := range persons {
//		ops = append(ops, func(ctx context.Context) error {
//			return store.InsertPersons(ctx, person)
//		})
//	}
//
//	err = executor.RunChunked(ctx, "persons", ops)
//
// No operation is retried and no timeout is added; cancelling the context passed in is the only
// way to abort a stalled batch.
package batch
