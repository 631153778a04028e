package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// SyncOptions configures a CollectionSyncController
type SyncOptions struct {
	// Noun names one entity in notifications, e.g. "Patient". Defaults to the provider name.
	Noun     string
	Notifier providers.Notifier
	Metrics  *observability.Metrics
	List     providers.ListOptions
}

// validatable is implemented by create payloads that can be checked before sending
type validatable interface {
	Validate() error
}

// CollectionSyncController keeps a local mirror of a remote collection and applies
// create, update and remove operations to both sides.
type CollectionSyncController[T entities.Entity] struct {
	provider providers.CollectionProvider[T]
	notifier providers.Notifier
	metrics  *observability.Metrics
	noun     string
	listOpts providers.ListOptions

	onCreated func(T)
	onRemoved func(T)

	mu         sync.RWMutex
	items      []T
	status     entities.CollectionStatus
	lastError  string
	generation uint64
}

// NewCollectionSyncController creates a controller in the Idle state with no items
func NewCollectionSyncController[T entities.Entity](provider providers.CollectionProvider[T], opts SyncOptions) *CollectionSyncController[T] {
	noun := opts.Noun
	if noun == "" {
		noun = provider.Name()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = providers.NotifierFunc(func(context.Context, entities.NotificationKind, string) {})
	}
	return &CollectionSyncController[T]{
		provider: provider,
		notifier: notifier,
		metrics:  opts.Metrics,
		noun:     noun,
		listOpts: opts.List,
		items:    []T{},
		status:   entities.CollectionStatusIdle,
	}
}

// OnCreated registers a callback run after a create is confirmed by the server
func (c *CollectionSyncController[T]) OnCreated(fn func(T)) {
	c.mu.Lock()
	c.onCreated = fn
	c.mu.Unlock()
}

// OnRemoved registers a callback run after a delete is confirmed by the server
func (c *CollectionSyncController[T]) OnRemoved(fn func(T)) {
	c.mu.Lock()
	c.onRemoved = fn
	c.mu.Unlock()
}

// SetListOptions changes the filter used by later refreshes
func (c *CollectionSyncController[T]) SetListOptions(opts providers.ListOptions) {
	c.mu.Lock()
	c.listOpts = opts
	c.mu.Unlock()
}

// Refresh replaces the local items with the server's collection. On failure the previous
// items are kept and the error is returned. A response that arrives after a newer refresh
// was started is discarded.
func (c *CollectionSyncController[T]) Refresh(ctx context.Context) error {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "refresh")
	defer span.End()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	opts := c.listOpts
	c.status = entities.CollectionStatusLoading
	c.mu.Unlock()

	items, err := c.provider.List(ctx, opts)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		observability.LoggerFromContext(ctx).Debug().
			Str("collection", c.provider.Name()).
			Uint64("generation", gen).
			Msg("discarding stale refresh response")
		span.SetAttributes(attribute.Bool("stale", true))
		return err
	}
	if err != nil {
		c.status = entities.CollectionStatusError
		c.lastError = apperrors.Message(err)
		c.mu.Unlock()
		c.fail(ctx, span, "refresh", start, err, fmt.Sprintf("Failed to load %s", c.provider.Name()))
		return err
	}
	c.items = dedupe(items)
	c.status = entities.CollectionStatusReady
	c.lastError = ""
	count := len(c.items)
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("items", count))
	observability.RecordOperationMetric(ctx, c.metrics, c.provider.Name(), "refresh", true, time.Since(start))
	observability.LoggerFromContext(ctx).Debug().
		Str("collection", c.provider.Name()).
		Int("items", count).
		Msg("collection refreshed")
	return nil
}

// Create validates payload when it knows how, sends it to the server and appends the
// server's representation to the local items.
func (c *CollectionSyncController[T]) Create(ctx context.Context, payload any) (T, entities.OperationResult) {
	var zero T
	start := time.Now()
	ctx, span := c.startSpan(ctx, "create")
	defer span.End()

	if v, ok := payload.(validatable); ok {
		if err := v.Validate(); err != nil {
			return zero, c.fail(ctx, span, "create", start, err, fmt.Sprintf("Failed to create %s", c.lowerNoun()))
		}
	}

	created, err := c.provider.Create(ctx, payload)
	if err == nil && created.EntityID() == "" {
		err = apperrors.NewInternalError(fmt.Sprintf("created %s has no id", c.lowerNoun()), nil)
	}
	if err != nil {
		return zero, c.fail(ctx, span, "create", start, err, fmt.Sprintf("Failed to create %s", c.lowerNoun()))
	}

	id := created.EntityID()
	c.mu.Lock()
	added := true
	if idx := c.indexOf(id); idx >= 0 {
		c.items[idx] = created
		added = false
	} else {
		c.items = append(c.items, created)
	}
	hook := c.onCreated
	c.mu.Unlock()

	if added && hook != nil {
		hook(created)
	}

	span.SetAttributes(attribute.String("entity.id", id))
	c.succeed(ctx, "create", start, fmt.Sprintf("%s created successfully", c.noun))
	return created, entities.Succeeded()
}

// UpdateField sends a partial update for a locally known entity and merges patch into the
// local copy once the server accepts it.
func (c *CollectionSyncController[T]) UpdateField(ctx context.Context, id string, patch map[string]any) entities.OperationResult {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "update", attribute.String("entity.id", id))
	defer span.End()

	failMsg := fmt.Sprintf("Failed to update %s", c.lowerNoun())
	current, ok := c.Get(id)
	if !ok {
		return c.fail(ctx, span, "update", start, c.notFound(id), failMsg)
	}
	if len(patch) == 0 {
		return c.fail(ctx, span, "update", start, apperrors.NewValidationError("nothing to update"), failMsg)
	}
	// The patch must fit the local type before it is sent
	if _, err := entities.MergePatch(current, patch); err != nil {
		return c.fail(ctx, span, "update", start, apperrors.NewValidationError(fmt.Sprintf("patch does not fit %s: %v", c.lowerNoun(), err)), failMsg)
	}

	if err := c.provider.Update(ctx, id, patch); err != nil {
		return c.fail(ctx, span, "update", start, err, failMsg)
	}

	c.mu.Lock()
	var mergeErr error
	if idx := c.indexOf(id); idx >= 0 {
		var merged T
		merged, mergeErr = entities.MergePatch(c.items[idx], patch)
		if mergeErr == nil {
			c.items[idx] = merged
		}
	}
	c.mu.Unlock()

	if mergeErr != nil {
		err := apperrors.NewInternalError("update accepted by server but could not be applied locally", mergeErr)
		return c.fail(ctx, span, "update", start, err, failMsg)
	}

	c.succeed(ctx, "update", start, fmt.Sprintf("%s updated successfully", c.noun))
	return entities.Succeeded()
}

// Remove deletes a locally known entity on the server and then locally. When the server
// reports the entity as already gone the local copy is dropped as well, but the result
// still reports the NOT_FOUND failure.
func (c *CollectionSyncController[T]) Remove(ctx context.Context, id string) entities.OperationResult {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "remove", attribute.String("entity.id", id))
	defer span.End()

	failMsg := fmt.Sprintf("Failed to remove %s", c.lowerNoun())
	if _, ok := c.Get(id); !ok {
		return c.fail(ctx, span, "remove", start, c.notFound(id), failMsg)
	}

	if err := c.provider.Delete(ctx, id); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			c.drop(id)
		}
		return c.fail(ctx, span, "remove", start, err, failMsg)
	}

	removed, ok := c.drop(id)
	c.mu.RLock()
	hook := c.onRemoved
	c.mu.RUnlock()
	if ok && hook != nil {
		hook(removed)
	}

	c.succeed(ctx, "remove", start, fmt.Sprintf("%s removed successfully", c.noun))
	return entities.Succeeded()
}

// State returns a snapshot of the collection
func (c *CollectionSyncController[T]) State() entities.CollectionState[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return entities.CollectionState[T]{
		Items:     append([]T(nil), c.items...),
		Status:    c.status,
		LastError: c.lastError,
	}
}

// Items returns a copy of the local items in server order
func (c *CollectionSyncController[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Get returns the local entity with the given id
func (c *CollectionSyncController[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// Status returns the status of the last refresh
func (c *CollectionSyncController[T]) Status() entities.CollectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Name returns the name of the underlying collection
func (c *CollectionSyncController[T]) Name() string {
	return c.provider.Name()
}

// indexOf must be called with mu held
func (c *CollectionSyncController[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *CollectionSyncController[T]) drop(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	idx := c.indexOf(id)
	if idx < 0 {
		return zero, false
	}
	removed := c.items[idx]
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	return removed, true
}

func (c *CollectionSyncController[T]) notFound(id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", c.lowerNoun(), id))
}

func (c *CollectionSyncController[T]) lowerNoun() string {
	return strings.ToLower(c.noun)
}

func (c *CollectionSyncController[T]) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("collection", c.provider.Name()))
	return observability.StartSpan(ctx, "collection."+op, attrs...)
}

func (c *CollectionSyncController[T]) succeed(ctx context.Context, op string, start time.Time, message string) {
	observability.RecordOperationMetric(ctx, c.metrics, c.provider.Name(), op, true, time.Since(start))
	c.notifier.Notify(ctx, entities.NotificationSuccess, message)
}

func (c *CollectionSyncController[T]) fail(ctx context.Context, span trace.Span, op string, start time.Time, err error, prefix string) entities.OperationResult {
	observability.RecordError(span, err)
	span.SetStatus(codes.Error, apperrors.Message(err))
	observability.RecordOperationMetric(ctx, c.metrics, c.provider.Name(), op, false, time.Since(start))

	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Str("collection", c.provider.Name()).
		Str("operation", op).
		Str("kind", string(apperrors.TypeOf(err))).
		Msg("collection operation failed")

	c.notifier.Notify(ctx, entities.NotificationError, fmt.Sprintf("%s: %s", prefix, apperrors.Message(err)))
	return entities.Failed(err)
}

// dedupe keeps the first occurrence of every id
func dedupe[T entities.Entity](items []T) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}
