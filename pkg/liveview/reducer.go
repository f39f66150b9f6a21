// Package liveview is the client side of the admin panel: it loads the record
// list, keeps it in sync from the change feed and submits edits through the
// HTTP API.
package liveview

import (
	"encoding/json"
	"fmt"

	"adminpanel/models"
	"adminpanel/pkg/notify"
)

// Op is one of the three patch operations the list understands.
type Op int

const (
	OpInsertFront Op = iota + 1
	OpReplace
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpInsertFront:
		return "insert-front"
	case OpReplace:
		return "replace"
	case OpRemove:
		return "remove"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Patch is a decoded change event.
type Patch struct {
	Op     Op
	Record models.Record // set for insert-front and replace
	ID     string        // target id for every op
}

// DecodePatch maps a change feed envelope to a Patch.
func DecodePatch(env notify.Envelope) (Patch, error) {
	switch env.Event {
	case notify.EventCreated, notify.EventUpdated:
		var p notify.RecordPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return Patch{}, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		op := OpInsertFront
		if env.Event == notify.EventUpdated {
			op = OpReplace
		}
		return Patch{Op: op, Record: p.Student, ID: p.Student.ID}, nil
	case notify.EventDeleted:
		var p notify.DeletePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return Patch{}, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return Patch{Op: OpRemove, ID: p.ID}, nil
	}
	return Patch{}, fmt.Errorf("unknown event %q", env.Event)
}

// Apply returns list with p applied. The input slice is never modified.
// Replace and remove on an id that is not present leave the list unchanged.
func Apply(list []models.Record, p Patch) []models.Record {
	switch p.Op {
	case OpInsertFront:
		out := make([]models.Record, 0, len(list)+1)
		out = append(out, p.Record)
		return append(out, list...)
	case OpReplace:
		out := make([]models.Record, len(list))
		copy(out, list)
		for i := range out {
			if out[i].ID == p.ID {
				out[i] = p.Record
			}
		}
		return out
	case OpRemove:
		out := make([]models.Record, 0, len(list))
		for _, r := range list {
			if r.ID != p.ID {
				out = append(out, r)
			}
		}
		return out
	}
	return list
}
