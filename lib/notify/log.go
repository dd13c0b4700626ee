package notify

import (
	"context"
	"log/slog"
	"strings"
)

// Log writes the change summary to the structured log, it is the sink used
// when nothing else is configured.
type Log struct{}

func (Log) Notify(ctx context.Context, msg Message) error {
	slog.InfoContext(
		ctx, msg.Title(),
		"identity", msg.Identity,
		"semester", msg.SemesterID,
		"added", len(msg.Changes.Added),
		"updated", len(msg.Changes.Updated),
	)
	for _, line := range strings.Split(RenderText(msg), "\n") {
		slog.InfoContext(ctx, line)
	}
	return nil
}
