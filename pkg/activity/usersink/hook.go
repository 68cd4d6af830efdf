// Package usersink forwards component activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-component/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// UserID is recorded on every activity record when set.
	UserID uuid.UUID
	// TenantID is used when the event carries no parseable tenant.
	TenantID uuid.UUID
	// Verbs restricts forwarding to the listed verbs. Empty forwards all.
	Verbs []string
}

// Notify forwards the event to the sink. Invalid or filtered events are
// dropped without error.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || !h.accepts(event.Verb) {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	record.UserID = h.UserID
	if record.TenantID == uuid.Nil {
		record.TenantID = h.TenantID
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

func (h Hook) accepts(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, allowed := range h.Verbs {
		if strings.EqualFold(allowed, strings.TrimSpace(verb)) {
			return true
		}
	}
	return false
}

// Record maps an activity event to an ActivityRecord. Actor and tenant ids
// that are not UUIDs become uuid.Nil; the component label is stored under
// Data["component"].
func Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return usertypes.ActivityRecord{}, false
	}

	data := make(map[string]any, len(normalized.Metadata)+1)
	for key, value := range normalized.Metadata {
		data[key] = value
	}
	if normalized.Component != "" {
		data["component"] = normalized.Component
	}
	if len(data) == 0 {
		data = nil
	}

	return usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	}, true
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
