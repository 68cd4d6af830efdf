package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	component "github.com/goliatone/go-component"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("state: definition set not found")

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one stored definition set.
type Ref struct {
	Namespace string
	SetID     uuid.UUID
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Loader defines stored definition sets on a runtime.
type Loader struct {
	Store   Store[component.DefinitionSet]
	Runtime *component.Runtime
}

type Mutator func(*component.DefinitionSet) error

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Namespace == "" {
		return "", fmt.Errorf("state: namespace is required")
	}
	if r.SetID == uuid.Nil {
		return "", fmt.Errorf("state: set id is required for namespace %q", r.Namespace)
	}
	return fmt.Sprintf("%s/%s", r.Namespace, r.SetID), nil
}

// Define loads the set behind ref and defines it on root.
func (l Loader) Define(ctx context.Context, root *component.Constructor, ref Ref) (map[string]*component.Constructor, Meta, error) {
	if err := l.check(); err != nil {
		return nil, Meta{}, err
	}
	set, meta, ok, err := l.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %s: %w", ref.Namespace, err)
	}
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: %s/%s", ErrNotFound, ref.Namespace, ref.SetID)
	}
	ctors, err := l.Runtime.Define(root, set.Components...)
	if err != nil {
		return nil, meta, fmt.Errorf("state: define %s/%s: %w", ref.Namespace, ref.SetID, err)
	}
	return ctors, meta, nil
}

// DefineAll defines every stored set in refs order. Missing sets are
// skipped; at least one set must be found.
func (l Loader) DefineAll(ctx context.Context, root *component.Constructor, refs ...Ref) (map[string]*component.Constructor, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("state: at least one ref is required")
	}

	out := map[string]*component.Constructor{}
	found := 0
	for _, ref := range refs {
		set, _, ok, err := l.Store.Load(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("state: load %s: %w", ref.Namespace, err)
		}
		if !ok {
			continue
		}
		found++
		ctors, err := l.Runtime.Define(root, set.Components...)
		if err != nil {
			return nil, fmt.Errorf("state: define %s/%s: %w", ref.Namespace, ref.SetID, err)
		}
		for name, ctor := range ctors {
			out[name] = ctor
		}
	}
	if found == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Mutate loads one set, applies fn, validates the result, then saves.
func (l Loader) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (component.DefinitionSet, Meta, error) {
	if l.Store == nil {
		return component.DefinitionSet{}, Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return component.DefinitionSet{}, Meta{}, err
	}
	if fn == nil {
		return component.DefinitionSet{}, Meta{}, fmt.Errorf("state: mutator is required")
	}

	set, loadedMeta, ok, err := l.Store.Load(ctx, ref)
	if err != nil {
		return component.DefinitionSet{}, Meta{}, fmt.Errorf("state: load %s: %w", ref.Namespace, err)
	}
	if !ok {
		set = component.DefinitionSet{}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return component.DefinitionSet{}, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	set.Components = append([]component.Definition(nil), set.Components...)
	if err := fn(&set); err != nil {
		return component.DefinitionSet{}, loadedMeta, err
	}
	set.ID = ref.SetID

	if err := component.ValidateDefinitions(set.Components...); err != nil {
		return component.DefinitionSet{}, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	if meta.SnapshotID == "" {
		saveMeta.SnapshotID = uuid.NewString()
	}
	if meta.UpdatedAt.IsZero() {
		saveMeta.UpdatedAt = time.Now().UTC()
	}
	savedMeta, err := l.Store.Save(ctx, ref, set, saveMeta)
	if err != nil {
		return component.DefinitionSet{}, loadedMeta, fmt.Errorf("state: save %s: %w", ref.Namespace, err)
	}
	return set, savedMeta, nil
}

func (l Loader) check() error {
	if l.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if l.Runtime == nil {
		return fmt.Errorf("state: runtime is required")
	}
	return nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
