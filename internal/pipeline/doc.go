// Package pipeline holds the task handlers of the daily partition-refresh
// pipeline and assembles them into the task graph:
//
//	get_process_date -> create_table -> clean_process_date -> <transform>
//
// The first task resolves the partition key and publishes it in the run
// context. The remaining tasks ensure the target table exists, delete the
// partition's rows and submit the transformation job that reloads them.
// Re-running any partition key replaces its rows, so a retry is a plain
// re-trigger.
package pipeline
