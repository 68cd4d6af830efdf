package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-component/pkg/activity"
	"github.com/goliatone/go-component/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	userID := uuid.New()
	hook := usersink.Hook{Sink: sink, UserID: userID}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildComponentCreatedEvent(activity.InstanceEventInput{
		UID:        12,
		Component:  "Child",
		Phase:      "created",
		OccurredAt: now,
	})
	event.ActorID = actorID.String()
	event.TenantID = tenantID.String()
	event.Channel = "components"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID || record.UserID != userID {
		t.Fatalf("unexpected identity fields: %+v", record)
	}
	if record.Verb != activity.VerbComponentCreated || record.ObjectType != activity.ObjectTypeInstance || record.ObjectID != "12" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "components" {
		t.Fatalf("expected channel components got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["component"] != "Child" || record.Data["phase"] != "created" {
		t.Fatalf("expected metadata passthrough got %+v", record.Data)
	}
}

func TestHookNotifyInvalidActorBecomesNil(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbComponentMounted,
		ObjectType: activity.ObjectTypeInstance,
		ObjectID:   "1",
		ActorID:    "not-a-uuid",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor, got %s", sink.records[0].ActorID)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHookFiltersVerbsAndDefaultsTenant(t *testing.T) {
	sink := &recordingSink{}
	tenantID := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenantID, Verbs: []string{activity.VerbComponentMounted}}

	created := activity.BuildComponentCreatedEvent(activity.InstanceEventInput{UID: 1, Component: "A"})
	mounted := activity.BuildComponentMountedEvent(activity.InstanceEventInput{UID: 1, Component: "A", Target: "#app"})
	for _, event := range []activity.Event{created, mounted} {
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	if len(sink.records) != 1 || sink.records[0].Verb != activity.VerbComponentMounted {
		t.Fatalf("expected only the mounted event, got %+v", sink.records)
	}
	if sink.records[0].TenantID != tenantID {
		t.Fatalf("expected default tenant, got %s", sink.records[0].TenantID)
	}
}

func TestRecordRejectsInvalidEvents(t *testing.T) {
	if _, ok := usersink.Record(activity.Event{Verb: "x"}); ok {
		t.Fatalf("expected incomplete event to be rejected")
	}
	record, ok := usersink.Record(activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"})
	if !ok || record.Data != nil {
		t.Fatalf("expected record without data, got %+v", record)
	}
}
