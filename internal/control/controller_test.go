package control

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// fakeCollection is an in-memory upstream with injectable failures.
type fakeCollection struct {
	mu    sync.Mutex
	items []models.Product

	listErr   error
	createErr error
	updateErr error
	deleteErr map[string]error

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	lastSaved models.Product
}

func (f *fakeCollection) List(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Product{}, f.items...), nil
}

func (f *fakeCollection) Create(ctx context.Context, p models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return models.Product{}, f.createErr
	}
	p.ID = fmt.Sprintf("id-%d", len(f.items)+1)
	f.items = append(f.items, p)
	f.lastSaved = p
	return p, nil
}

func (f *fakeCollection) Update(ctx context.Context, id string, p models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return models.Product{}, f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i] = p
			f.lastSaved = p
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("not found: %s", id)
}

func (f *fakeCollection) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if err, ok := f.deleteErr[id]; ok {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func validProduct(id, name string) models.Product {
	return models.Product{
		ID:           id,
		Name:         name,
		Price:        100,
		Brand:        "Siemens",
		Availability: models.Availability{Count: 5},
	}
}

func chargerController(coll *fakeCollection) *Controller[models.Product] {
	return New[models.Product](ProductConfig(models.CategoryCharger), coll, nil)
}

func TestLoadPopulatesRowsAndOptions(t *testing.T) {
	coll := &fakeCollection{items: []models.Product{
		validProduct("1", "A"),
		validProduct("2", "B"),
	}}
	coll.items[1].Brand = "ABB"

	ctl := chargerController(coll)
	require.NoError(t, ctl.Load(context.Background()))

	vm := ctl.Snapshot()
	assert.Equal(t, StateLoaded, vm.State)
	assert.Len(t, vm.Rows, 2)
	assert.Len(t, vm.Filtered, 2)
	assert.Equal(t, []string{"ABB", "Siemens"}, vm.Options["brand"])
}

func TestLoadFailureLeavesEmptyListWithMessage(t *testing.T) {
	coll := &fakeCollection{listErr: fmt.Errorf("connection refused")}
	ctl := chargerController(coll)

	err := ctl.Load(context.Background())
	require.Error(t, err)

	vm := ctl.Snapshot()
	assert.Equal(t, StateError, vm.State)
	assert.Empty(t, vm.Rows)
	assert.Equal(t, msgLoadFailed, vm.Error)
}

func TestValidationBlocksSave(t *testing.T) {
	coll := &fakeCollection{}
	ctl := chargerController(coll)

	ctl.OpenCreate()
	require.NoError(t, ctl.SetDraftEntity(models.Product{Name: "  ", Price: 50}))

	err := ctl.Save(context.Background())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "اسم المنتج مطلوب", err.Error())
	assert.Zero(t, coll.createCalls)

	vm := ctl.Snapshot()
	assert.Equal(t, ModalCreate, vm.Modal)
	assert.NotNil(t, vm.Draft)
}

func TestFirstFailingRuleWins(t *testing.T) {
	coll := &fakeCollection{}
	ctl := chargerController(coll)

	ctl.OpenCreate()
	// Name and price are both invalid; the name message must surface.
	require.NoError(t, ctl.SetDraftEntity(models.Product{Price: 0}))

	err := ctl.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, "اسم المنتج مطلوب", err.Error())
}

func TestSaveSendsCurrentImageState(t *testing.T) {
	p := validProduct("1", "A")
	p.Images = models.ImageList{
		models.RemoteImage("https://a"),
		models.RemoteImage("https://b"),
		models.RemoteImage("https://c"),
	}
	coll := &fakeCollection{items: []models.Product{p}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.OpenEdit("1"))
	require.NoError(t, ctl.RemoveImage(1))
	require.NoError(t, ctl.Save(ctx))

	raw, err := json.Marshal(coll.lastSaved.Images)
	require.NoError(t, err)
	assert.JSONEq(t, `["https://a","https://c"]`, string(raw))
}

func TestSaveSendsExplicitlyEmptyImages(t *testing.T) {
	p := validProduct("1", "A")
	p.Images = models.ImageList{models.RemoteImage("https://a")}
	coll := &fakeCollection{items: []models.Product{p}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.OpenEdit("1"))
	require.NoError(t, ctl.RemoveImage(0))
	require.NoError(t, ctl.Save(ctx))

	require.NotNil(t, coll.lastSaved.Images)
	raw, err := json.Marshal(coll.lastSaved.Images)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestAttachImagesKeepsSelectionOrder(t *testing.T) {
	coll := &fakeCollection{}
	ctl := chargerController(coll)

	ctl.OpenCreate()
	files := []File{
		{Name: "a.png", MIME: "image/png", Data: []byte("a")},
		{Name: "b.png", MIME: "image/png", Data: []byte("b")},
		{Name: "c.png", MIME: "image/png", Data: []byte("c")},
	}
	require.NoError(t, ctl.AttachImages(files))

	vm := ctl.Snapshot()
	require.Len(t, vm.Draft.Preview, 3)
	assert.Equal(t, []byte("a"), vm.Draft.Preview[0].Data)
	assert.Equal(t, []byte("b"), vm.Draft.Preview[1].Data)
	assert.Equal(t, []byte("c"), vm.Draft.Preview[2].Data)
	for _, ref := range vm.Draft.Preview {
		assert.True(t, ref.Pending)
	}
}

func TestRemoveImageOutOfRange(t *testing.T) {
	ctl := chargerController(&fakeCollection{})
	ctl.OpenCreate()
	assert.Error(t, ctl.RemoveImage(0))
	assert.Error(t, ctl.RemoveImage(-1))
}

func TestSaveFailureKeepsDraftForResubmission(t *testing.T) {
	p := validProduct("1", "A")
	coll := &fakeCollection{items: []models.Product{p}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.OpenEdit("1"))

	edited := p
	edited.Name = "A2"
	require.NoError(t, ctl.SetDraftEntity(edited))

	coll.updateErr = fmt.Errorf("backend down")
	err := ctl.Save(ctx)
	require.Error(t, err)

	vm := ctl.Snapshot()
	assert.Equal(t, ModalEdit, vm.Modal)
	require.NotNil(t, vm.Draft)
	assert.Equal(t, "A2", vm.Draft.Entity.Name)
	assert.Equal(t, msgSaveFailed, vm.Error)

	// Resubmission succeeds once the backend recovers.
	coll.updateErr = nil
	require.NoError(t, ctl.Save(ctx))
	assert.Equal(t, "A2", coll.lastSaved.Name)
}

func TestBulkDeletePartialFailure(t *testing.T) {
	coll := &fakeCollection{
		items: []models.Product{
			validProduct("1", "A"), validProduct("2", "B"), validProduct("3", "C"),
			validProduct("4", "D"), validProduct("5", "E"),
		},
		deleteErr: map[string]error{"3": fmt.Errorf("conflict")},
	}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))

	err := ctl.DeleteMany(ctx, []string{"1", "2", "3", "4", "5"})
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 5 deletions failed")
	assert.Equal(t, 5, coll.deleteCalls)

	// The list was reloaded regardless of the failure: the four
	// successful deletions are reflected and the failed row survives.
	vm := ctl.Snapshot()
	assert.Len(t, vm.Rows, 1)
	assert.Equal(t, "3", vm.Rows[0].Entity.ID)
	assert.Equal(t, msgDeleteFailed, vm.Error)
}

func TestBulkDeleteSuccessToast(t *testing.T) {
	coll := &fakeCollection{items: []models.Product{
		validProduct("1", "A"), validProduct("2", "B"),
	}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.DeleteMany(ctx, []string{"1", "2"}))

	vm := ctl.Snapshot()
	assert.Empty(t, vm.Rows)
	assert.Equal(t, deletedMessage(2), vm.Toast)
}

func TestDeleteEmptySelectionIsNoop(t *testing.T) {
	coll := &fakeCollection{items: []models.Product{validProduct("1", "A")}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	calls := coll.deleteCalls
	require.NoError(t, ctl.DeleteSelected(ctx))
	assert.Equal(t, calls, coll.deleteCalls)
}

func TestSelectAllCoversOnlyFilteredRows(t *testing.T) {
	a := validProduct("1", "A")
	b := validProduct("2", "B")
	b.Brand = "ABB"
	c := validProduct("3", "C")
	coll := &fakeCollection{items: []models.Product{a, b, c}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	ctl.SetFilters(Filters{Facets: map[string]string{"brand": "Siemens"}})
	ctl.SelectAll(true)

	require.NoError(t, ctl.DeleteSelected(ctx))

	// Only the Siemens rows were selected and deleted.
	ctl.SetFilters(Filters{})
	vm := ctl.Snapshot()
	require.Len(t, vm.Rows, 1)
	assert.Equal(t, "2", vm.Rows[0].Entity.ID)
}

func TestSelectionExcludedByFilterIsIgnored(t *testing.T) {
	a := validProduct("1", "A")
	b := validProduct("2", "B")
	b.Brand = "ABB"
	coll := &fakeCollection{items: []models.Product{a, b}}
	ctl := chargerController(coll)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))

	// Select both, then narrow the filter so only one remains visible.
	ctl.SelectAll(true)
	ctl.SetFilters(Filters{Facets: map[string]string{"brand": "ABB"}})
	require.NoError(t, ctl.DeleteSelected(ctx))

	ctl.SetFilters(Filters{})
	vm := ctl.Snapshot()
	require.Len(t, vm.Rows, 1)
	assert.Equal(t, "1", vm.Rows[0].Entity.ID)
}

func TestCreateAssignsImagesBeforeValidation(t *testing.T) {
	ctl := New[models.GalleryItem](GalleryConfig(), &fakeGallery{}, nil)

	ctl.OpenCreate()
	require.NoError(t, ctl.SetDraftEntity(models.GalleryItem{Title: "t"}))

	// No image attached: the image-required rule fires locally.
	err := ctl.Save(context.Background())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "الصورة مطلوبة", err.Error())

	// Attaching an image satisfies the rule through the preview.
	require.NoError(t, ctl.AttachImages([]File{{Name: "a.png", MIME: "image/png", Data: []byte("x")}}))
	require.NoError(t, ctl.Save(context.Background()))
}

type fakeGallery struct {
	mu    sync.Mutex
	items []models.GalleryItem
}

func (f *fakeGallery) List(ctx context.Context) ([]models.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.GalleryItem{}, f.items...), nil
}

func (f *fakeGallery) Create(ctx context.Context, g models.GalleryItem) (models.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = fmt.Sprintf("g-%d", len(f.items)+1)
	f.items = append(f.items, g)
	return g, nil
}

func (f *fakeGallery) Update(ctx context.Context, id string, g models.GalleryItem) (models.GalleryItem, error) {
	return g, nil
}

func (f *fakeGallery) Delete(ctx context.Context, id string) error { return nil }

func TestOrderEditCarriesImmutableFields(t *testing.T) {
	existing := models.Order{
		ID:          "o1",
		OrderNumber: "PWR-100",
		Name:        "Ahmed",
		Phone:       "0100",
		Address:     "Cairo",
		Items:       []models.OrderLine{{ProductID: "p1", Quantity: 2, Price: 50}},
		TotalAmount: 100,
	}
	coll := &fakeOrders{items: []models.Order{existing}}
	ctl := New[models.Order](OrderConfig(), coll, nil)

	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.OpenEdit("o1"))

	// The submitted draft drops the line items; the engine restores them.
	edited := models.Order{ID: "o1", Name: "Ahmed Ali", Phone: "0100", Address: "Giza"}
	require.NoError(t, ctl.SetDraftEntity(edited))
	require.NoError(t, ctl.Save(ctx))

	assert.Equal(t, "Ahmed Ali", coll.lastSaved.Name)
	assert.Equal(t, "PWR-100", coll.lastSaved.OrderNumber)
	assert.Equal(t, 100.0, coll.lastSaved.TotalAmount)
	require.Len(t, coll.lastSaved.Items, 1)
}

type fakeOrders struct {
	mu        sync.Mutex
	items     []models.Order
	lastSaved models.Order
}

func (f *fakeOrders) List(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order{}, f.items...), nil
}

func (f *fakeOrders) Create(ctx context.Context, o models.Order) (models.Order, error) {
	return o, nil
}

func (f *fakeOrders) Update(ctx context.Context, id string, o models.Order) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i] = o
			f.lastSaved = o
			return o, nil
		}
	}
	return models.Order{}, fmt.Errorf("not found: %s", id)
}

func (f *fakeOrders) Delete(ctx context.Context, id string) error { return nil }

func TestUserPasswordRuleOnlyOnCreate(t *testing.T) {
	cfg := UserConfig()
	coll := &fakeUsers{}
	ctl := New[models.User](cfg, coll, nil)

	ctl.OpenCreate()
	require.NoError(t, ctl.SetDraftEntity(models.User{Name: "N", Email: "n@x.com", Password: "123"}))
	err := ctl.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, "كلمة المرور يجب أن تكون 6 أحرف على الأقل", err.Error())

	// On edit the password rule does not apply.
	coll.items = []models.User{{ID: "u1", Name: "N", Email: "n@x.com"}}
	ctx := context.Background()
	require.NoError(t, ctl.Load(ctx))
	require.NoError(t, ctl.OpenEdit("u1"))
	require.NoError(t, ctl.SetDraftEntity(models.User{ID: "u1", Name: "N2", Email: "n@x.com"}))
	require.NoError(t, ctl.Save(ctx))
}

func TestUserRoleRule(t *testing.T) {
	ctl := New[models.User](UserConfig(), &fakeUsers{}, nil)
	ctx := context.Background()

	for _, role := range []string{"", models.RoleAdmin, models.RoleEmployee} {
		ctl.OpenCreate()
		require.NoError(t, ctl.SetDraftEntity(models.User{Name: "N", Email: "n@x.com", Password: "secret1", Role: role}))
		require.NoError(t, ctl.Save(ctx), "role %q should be accepted", role)
	}

	ctl.OpenCreate()
	require.NoError(t, ctl.SetDraftEntity(models.User{Name: "N", Email: "n@x.com", Password: "secret1", Role: "user"}))
	err := ctl.Save(ctx)
	require.Error(t, err)
	assert.Equal(t, "الدور غير صالح", err.Error())
}

type fakeUsers struct {
	mu    sync.Mutex
	items []models.User
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User{}, f.items...), nil
}

func (f *fakeUsers) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = "u-new"
	return u, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, u models.User) (models.User, error) {
	return u, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id string) error { return nil }
