// Package worker runs AI tasks described by string-keyed bundles.
//
// A bundle names its task in the "task_type" key and carries the task's
// parameters as strings. The queue decodes it into a typed call on the
// service manager or the graph builder and reports the outcome as another
// bundle holding either "result" or "error" and "error_kind":
//
//	q, err := worker.NewQueue(manager, worker.WithGraph(builder))
//	if err != nil {
//	    return err
//	}
//	defer q.Release()
//
//	out := q.Run(ctx, worker.Bundle{
//	    worker.KeyTaskType: worker.TaskGenerateTags,
//	    worker.KeyContent:  text,
//	})
//	if msg, failed := out.Err(); failed {
//	    log.Println(msg)
//	}
//
// Submit runs the same decoding on the queue's pool and delivers the output
// on a channel.
package worker
