package control

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"

	"go.uber.org/zap"
)

// Entity is anything an entity-control screen can list and mutate.
type Entity interface {
	EntityID() string
}

// Collection is the upstream CRUD surface a controller drives.
type Collection[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
}

// EventSink receives fire-and-forget notifications after successful
// mutations. Implementations must not block on failure.
type EventSink interface {
	EntityCreated(ctx context.Context, collection, id string)
	EntityUpdated(ctx context.Context, collection, id string)
	EntityDeleted(ctx context.Context, collection string, ids []string)
}

// Rule is one ordered validation check. The first failing rule's message
// is the only one surfaced.
type Rule[T Entity] struct {
	Valid   func(T) bool
	Message string
}

// Facet is an exact-match dropdown filter backed by one entity field.
type Facet[T Entity] struct {
	Key   string
	Value func(T) string
}

// Config declares everything that differs between entity-control screens:
// searchable text, facet dropdowns, the stock predicate and its low-stock
// band, validation rules and the image accessors. The engine itself is
// shared by all screens.
type Config[T Entity] struct {
	Collection  string
	Search      func(T) []string
	Facets      []Facet[T]
	Stock       func(T) models.Availability
	LowStockMax int
	Rules       []Rule[T]
	CreateRules []Rule[T]
	Images      func(T) models.ImageList
	SetImages   func(*T, models.ImageList)

	// BeforeUpdate lets a screen carry immutable fields over from the
	// loaded entity into the edited draft (e.g. order line items).
	BeforeUpdate func(old, draft T) T
}

// ValidationError is a draft rejected before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// File is a locally selected image file awaiting upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Controller is the shared entity-control engine: a long-lived view-model
// over one collection, mutated through the operations below. Operations
// are serialized; the view-model is never observed mid-mutation.
type Controller[T Entity] struct {
	cfg    Config[T]
	coll   Collection[T]
	events EventSink
	logger *zap.Logger

	mu sync.Mutex
	vm ViewModel[T]
}

// New creates a controller for one screen. events may be nil.
func New[T Entity](cfg Config[T], coll Collection[T], events EventSink) *Controller[T] {
	return &Controller[T]{
		cfg:    cfg,
		coll:   coll,
		events: events,
		logger: util.GetLogger(),
		vm: ViewModel[T]{
			State:   StateIdle,
			Modal:   ModalClosed,
			Delete:  DeleteClosed,
			Options: map[string][]string{},
		},
	}
}

// Snapshot returns a copy of the current view-model.
func (c *Controller[T]) Snapshot() ViewModel[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm.clone()
}

// Load fetches the full collection and rebuilds the filtered view and the
// facet option lists. On failure the list is left empty and the error
// message (backend-provided when present) is surfaced; there is no retry.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Toast = ""
	return c.load(ctx)
}

func (c *Controller[T]) load(ctx context.Context) error {
	c.vm.State = StateLoading
	entities, err := c.coll.List(ctx)
	if err != nil {
		c.logger.Error("Failed to load collection",
			zap.String("collection", c.cfg.Collection),
			zap.Error(err))
		c.vm.State = StateError
		c.vm.Rows = nil
		c.vm.Filtered = nil
		c.vm.Error = fallbackMessage(err, msgLoadFailed)
		return err
	}

	rows := make([]Row[T], 0, len(entities))
	for _, e := range entities {
		rows = append(rows, Row[T]{Entity: e})
	}
	c.vm.Rows = rows
	c.vm.State = StateLoaded
	c.vm.Error = ""
	c.deriveOptions()
	c.applyFilters()
	return nil
}

// SetFilters replaces the filter state and recomputes the filtered view
// synchronously. It never triggers a re-fetch.
func (c *Controller[T]) SetFilters(f Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f.Facets == nil {
		f.Facets = map[string]string{}
	}
	c.vm.Filters = f
	c.applyFilters()
}

// ToggleSelect flips the transient selection flag on one row.
func (c *Controller[T]) ToggleSelect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.vm.Rows {
		if c.vm.Rows[i].Entity.EntityID() == id {
			c.vm.Rows[i].Selected = !c.vm.Rows[i].Selected
			return
		}
	}
}

// SelectAll sets the selection flag on every row currently passing the
// active filter. Rows outside the filtered view are untouched.
func (c *Controller[T]) SelectAll(selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, i := range c.vm.Filtered {
		c.vm.Rows[i].Selected = selected
	}
}

// OpenCreate resets the draft form.
func (c *Controller[T]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.vm.Modal = ModalCreate
	c.vm.Error = ""
	c.vm.Draft = &Draft[T]{Mode: ModalCreate, Entity: zero, Preview: models.ImageList{}}
}

// OpenEdit populates the draft from a loaded row. Existing images are
// projected into the ordered preview list as remote refs, so removal is
// always a plain index operation.
func (c *Controller[T]) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entity, ok := c.findByID(id)
	if !ok {
		return fmt.Errorf("entity not found: %s", id)
	}
	preview := models.ImageList{}
	if c.cfg.Images != nil {
		preview = append(preview, c.cfg.Images(entity)...)
	}
	c.vm.Modal = ModalEdit
	c.vm.Error = ""
	c.vm.Draft = &Draft[T]{Mode: ModalEdit, Entity: entity, Preview: preview}
	return nil
}

// SetDraftEntity replaces the draft's entity fields. The preview list is
// rebuilt from the entity's images so the form and the preview agree.
func (c *Controller[T]) SetDraftEntity(entity T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm.Draft == nil {
		return errors.New("no open form")
	}
	c.vm.Draft.Entity = entity
	if c.cfg.Images != nil {
		c.vm.Draft.Preview = append(models.ImageList{}, c.cfg.Images(entity)...)
	}
	return nil
}

// AttachImages encodes the chosen files and appends them to the preview.
// Encoding runs per file concurrently but results are placed by original
// selection index, so preview order is deterministic.
func (c *Controller[T]) AttachImages(files []File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm.Draft == nil {
		return errors.New("no open form")
	}

	refs := make([]models.ImageRef, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			refs[i] = models.PendingImage(f.MIME, f.Data)
		}(i, f)
	}
	wg.Wait()

	c.vm.Draft.Preview = append(c.vm.Draft.Preview, refs...)
	return nil
}

// RemoveImage drops the preview entry at index i. Because every entry is
// tagged with its origin there is nothing to reconstruct: remote and
// pending refs are removed the same way.
func (c *Controller[T]) RemoveImage(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm.Draft == nil {
		return errors.New("no open form")
	}
	if i < 0 || i >= len(c.vm.Draft.Preview) {
		return fmt.Errorf("image index out of range: %d", i)
	}
	c.vm.Draft.Preview = append(c.vm.Draft.Preview[:i], c.vm.Draft.Preview[i+1:]...)
	return nil
}

// CloseModal abandons the draft.
func (c *Controller[T]) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Modal = ModalClosed
	c.vm.Draft = nil
}

// Save validates the draft and submits it. The images payload is always
// the full current preview (remote refs retained, pending refs encoded):
// what the preview shows is exactly what gets saved, including an
// explicitly empty array. A validation failure surfaces one message and
// issues no network call; a backend failure leaves the form open with the
// draft intact for resubmission.
func (c *Controller[T]) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm.Draft == nil {
		return errors.New("no open form")
	}
	if c.vm.Saving {
		return errors.New("save already in progress")
	}
	draft := c.vm.Draft

	entity := draft.Entity
	if c.cfg.SetImages != nil {
		c.cfg.SetImages(&entity, append(models.ImageList{}, draft.Preview...))
	}

	if msg := c.validate(entity, draft.Mode); msg != "" {
		util.ValidationFailuresTotal.WithLabelValues(c.cfg.Collection).Inc()
		c.vm.Error = msg
		return &ValidationError{Message: msg}
	}

	c.vm.Saving = true
	c.vm.Error = ""
	c.vm.Modal = ModalSubmitting

	var saved T
	var err error
	if draft.Mode == ModalCreate {
		saved, err = c.coll.Create(ctx, entity)
	} else {
		id := entity.EntityID()
		if c.cfg.BeforeUpdate != nil {
			if old, ok := c.findByID(id); ok {
				entity = c.cfg.BeforeUpdate(old, entity)
			}
		}
		saved, err = c.coll.Update(ctx, id, entity)
	}
	c.vm.Saving = false

	if err != nil {
		util.EntitySavesTotal.WithLabelValues(c.cfg.Collection, "error").Inc()
		c.logger.Error("Failed to save entity",
			zap.String("collection", c.cfg.Collection),
			zap.Error(err))
		c.vm.Modal = draft.Mode
		c.vm.Error = fallbackMessage(err, msgSaveFailed)
		return err
	}

	util.EntitySavesTotal.WithLabelValues(c.cfg.Collection, "success").Inc()
	if c.events != nil {
		if draft.Mode == ModalCreate {
			c.events.EntityCreated(ctx, c.cfg.Collection, saved.EntityID())
		} else {
			c.events.EntityUpdated(ctx, c.cfg.Collection, saved.EntityID())
		}
	}

	c.vm.Modal = ModalClosed
	c.vm.Draft = nil
	c.vm.Toast = msgSaved
	_ = c.load(ctx)
	return nil
}

// RequestDelete opens the confirmation step for the given ids.
func (c *Controller[T]) RequestDelete(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Delete = DeleteConfirming
	c.vm.PendingDelete = ids
}

// CancelDelete abandons the confirmation step.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Delete = DeleteClosed
	c.vm.PendingDelete = nil
}

// ConfirmDelete executes the pending confirmation.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.vm.PendingDelete
	return c.deleteMany(ctx, ids)
}

// DeleteMany deletes the given ids directly.
func (c *Controller[T]) DeleteMany(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteMany(ctx, ids)
}

// DeleteSelected deletes every row that is both selected and currently
// passing the filter.
func (c *Controller[T]) DeleteSelected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteMany(ctx, c.vm.selectedIDs())
}

// deleteMany issues one delete per id concurrently and waits for all of
// them to settle. Succeeded deletions are permanent; on any failure a
// single aggregate error is surfaced with no per-id detail and no
// rollback. The collection is reloaded either way so partial outcomes are
// reflected.
func (c *Controller[T]) deleteMany(ctx context.Context, ids []string) error {
	c.vm.Delete = DeleteClosed
	c.vm.PendingDelete = nil
	if len(ids) == 0 {
		return nil
	}
	c.vm.Delete = DeleteDeleting

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = c.coll.Delete(ctx, id)
		}(i, id)
	}
	wg.Wait()
	c.vm.Delete = DeleteClosed

	var succeeded []string
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			c.logger.Error("Failed to delete entity",
				zap.String("collection", c.cfg.Collection),
				zap.String("id", ids[i]),
				zap.Error(err))
			continue
		}
		succeeded = append(succeeded, ids[i])
	}

	util.EntityDeletesTotal.WithLabelValues(c.cfg.Collection, "success").Add(float64(len(succeeded)))
	util.EntityDeletesTotal.WithLabelValues(c.cfg.Collection, "error").Add(float64(failed))

	if c.events != nil && len(succeeded) > 0 {
		c.events.EntityDeleted(ctx, c.cfg.Collection, succeeded)
	}

	_ = c.load(ctx)

	if failed > 0 {
		c.vm.Error = msgDeleteFailed
		return fmt.Errorf("%d of %d deletions failed", failed, len(ids))
	}
	c.vm.Toast = deletedMessage(len(ids))
	return nil
}

func (c *Controller[T]) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Error = msg
}

func (c *Controller[T]) toast(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vm.Error = ""
	c.vm.Toast = msg
}

func (c *Controller[T]) validate(entity T, mode ModalState) string {
	for _, rule := range c.cfg.Rules {
		if !rule.Valid(entity) {
			return rule.Message
		}
	}
	if mode == ModalCreate {
		for _, rule := range c.cfg.CreateRules {
			if !rule.Valid(entity) {
				return rule.Message
			}
		}
	}
	return ""
}

func (c *Controller[T]) findByID(id string) (T, bool) {
	for _, row := range c.vm.Rows {
		if row.Entity.EntityID() == id {
			return row.Entity, true
		}
	}
	var zero T
	return zero, false
}
