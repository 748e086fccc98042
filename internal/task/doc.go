// Package task defines the task model shared by the orchestration flow:
// parsing tasks out of a spec's tasks.md, validating a backlog for
// structural problems, and selecting the next workable task.
//
// Selection is dependency and priority aware. A task is available once
// every ID in its depends_on list appears in the completed set; available
// tasks are ordered by descending priority with backlog order breaking
// ties. Failed tasks are skipped unless they opt into retry, and in batch
// mode tasks that have already been printed are tallied separately so the
// caller can tell "everything printed" apart from "everything done".
//
// Usage:
//
//	tasks := task.ParseMarkdown(content)
//	sel := task.Select(task.SelectInput{
//	    Tasks:     tasks,
//	    Completed: completed,
//	})
//	if sel.Task != nil {
//	    // work on sel.Task
//	}
package task
