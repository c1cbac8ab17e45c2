package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// SearchTask writes one identifier per line for every result of a search
// walk.
type SearchTask struct {
	Task
	SeedURL string
	walker  Walker
	out     io.Writer

	Found int
}

func NewSearchTask(seedURL string, walker Walker, out io.Writer) *SearchTask {
	return &SearchTask{
		Task:    NewTask(TaskTypeSearch, ""),
		SeedURL: seedURL,
		walker:  walker,
		out:     out,
	}
}

// Execute stops at the first page failure; identifiers already found are
// written before the error is returned.
func (t *SearchTask) Execute(ctx context.Context) error {
	w := bufio.NewWriter(t.out)

	var walkErr error
	for id, err := range t.walker.Walk(ctx, t.SeedURL) {
		if err != nil {
			walkErr = err
			break
		}
		if _, err := fmt.Fprintln(w, id); err != nil {
			return fmt.Errorf("failed to write identifier: %w", err)
		}
		t.Found++
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write identifiers: %w", err)
	}
	if walkErr != nil {
		return fmt.Errorf("search walk stopped after %d identifiers: %w", t.Found, walkErr)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"seed", t.SeedURL,
		"duration", t.GetDuration(),
		"identifiers", t.Found)

	return nil
}
