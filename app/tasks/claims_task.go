package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lysyi3m/wiki-api-connector/app/commons"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

var ErrMediaIDRequired = errors.New("submitting claims needs a media id")

type ClaimsOptions struct {
	// MediaID is the target Commons media entity, such as "M12345".
	MediaID string
	// Submitter, when set, posts the claims instead of only printing them.
	Submitter ClaimSubmitter
}

// ClaimsTask prints wbcreateclaim form data, one JSON object per line, for
// each identifier and optionally submits it.
type ClaimsTask struct {
	Task
	unit        *unit.Unit
	identifiers []string
	mapper      RecordMapper
	out         io.Writer
	opts        ClaimsOptions

	Claims    int
	Submitted int
	Skipped   int
	Failed    int
}

func NewClaimsTask(u *unit.Unit, identifiers []string, mapper RecordMapper, out io.Writer, opts ClaimsOptions) *ClaimsTask {
	return &ClaimsTask{
		Task:        NewTask(TaskTypeClaims, u.Name),
		unit:        u,
		identifiers: identifiers,
		mapper:      mapper,
		out:         out,
		opts:        opts,
	}
}

func (t *ClaimsTask) Execute(ctx context.Context) error {
	token := ""
	var existing map[string]bool
	if t.opts.Submitter != nil {
		if t.opts.MediaID == "" {
			return ErrMediaIDRequired
		}
		if len(t.identifiers) != 1 {
			return fmt.Errorf("submitting claims needs exactly one identifier, got %d", len(t.identifiers))
		}

		var err error
		if existing, err = t.opts.Submitter.ExistingProperties(ctx, t.opts.MediaID); err != nil {
			return err
		}
		if token, err = t.opts.Submitter.CSRFToken(ctx); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(t.out)
	for _, id := range t.identifiers {
		if err := ctx.Err(); err != nil {
			break
		}

		claims, err := t.mapper.Claims(ctx, t.unit, id)
		if err != nil {
			slog.Error("Failed to map claims", "unit", t.UnitName, "identifier", id, "error", err)
			t.Failed++
			continue
		}

		forms, err := commons.ClaimPostData(claims, t.opts.MediaID, token)
		if err != nil {
			slog.Error("Invalid claim", "unit", t.UnitName, "identifier", id, "error", err)
			t.Failed++
			continue
		}

		for _, form := range forms {
			line := make(map[string]string, len(form))
			for k := range form {
				line[k] = form.Get(k)
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("failed to write claim: %w", err)
			}
			t.Claims++

			if t.opts.Submitter == nil {
				continue
			}
			if property := form.Get("property"); existing[property] {
				slog.Info("Existing statement, skipping", "entity", t.opts.MediaID, "property", property)
				t.Skipped++
				continue
			}
			if err := t.opts.Submitter.PostForm(ctx, form); err != nil {
				slog.Error("Failed to submit claim", "identifier", id, "property", form.Get("property"), "error", err)
				t.Failed++
				continue
			}
			t.Submitted++
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"unit", t.UnitName,
		"duration", t.GetDuration(),
		"identifiers", len(t.identifiers),
		"claims", t.Claims,
		"submitted", t.Submitted,
		"skipped", t.Skipped,
		"failed", t.Failed)

	return ctx.Err()
}
