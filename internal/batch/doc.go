// Package batch manages the ordered batch of conversion jobs and its
// sequential run loop. Jobs move Pending -> Converting -> Completed/Failed;
// one job converts at a time and per-file failures never stop the batch.
// Observers consume immutable job snapshots through the event bus.
package batch
