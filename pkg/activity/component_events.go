package activity

import (
	"strconv"
	"strings"
	"time"
)

// Verbs emitted by the component runtime.
const (
	VerbComponentCreated    = "component.created"
	VerbComponentMounted    = "component.mounted"
	VerbConstructorResolved = "constructor.resolved"
	ObjectTypeInstance      = "component.instance"
	ObjectTypeConstructor   = "component.constructor"
)

// InstanceEventInput describes an instance lifecycle transition.
type InstanceEventInput struct {
	UID        uint64
	ParentUID  *uint64
	Component  string
	Phase      string
	Target     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ConstructorEventInput describes a constructor cache recompute.
type ConstructorEventInput struct {
	CID        uint64
	SuperCID   *uint64
	Component  string
	Depth      int
	Keys       []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildComponentCreatedEvent reports an instance that finished its created
// hook.
func BuildComponentCreatedEvent(input InstanceEventInput) Event {
	return buildInstanceEvent(VerbComponentCreated, input)
}

// BuildComponentMountedEvent reports an instance that was mounted.
func BuildComponentMountedEvent(input InstanceEventInput) Event {
	event := buildInstanceEvent(VerbComponentMounted, input)
	if input.Target != "" {
		event.Metadata = ensureMetadata(event.Metadata)
		event.Metadata["target"] = input.Target
	}
	return event
}

// BuildConstructorResolvedEvent reports a constructor whose resolved options
// were recomputed.
func BuildConstructorResolvedEvent(input ConstructorEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["depth"] = input.Depth
	if input.SuperCID != nil {
		metadata["super_cid"] = *input.SuperCID
	}
	if len(input.Keys) > 0 {
		metadata["keys"] = append([]string{}, input.Keys...)
	}
	return Event{
		Verb:       VerbConstructorResolved,
		ObjectType: ObjectTypeConstructor,
		ObjectID:   strconv.FormatUint(input.CID, 10),
		Component:  strings.TrimSpace(input.Component),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildInstanceEvent(verb string, input InstanceEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.ParentUID != nil {
		metadata = ensureMetadata(metadata)
		metadata["parent_uid"] = *input.ParentUID
	}
	if input.Phase != "" {
		metadata = ensureMetadata(metadata)
		metadata["phase"] = input.Phase
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeInstance,
		ObjectID:   strconv.FormatUint(input.UID, 10),
		Component:  strings.TrimSpace(input.Component),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
