package control

import "github.com/mmhmddd/PowerEV-sub000/internal/models"

// State is the list lifecycle: Idle until the first load, then Loading and
// either Loaded or Error. Screens are long-lived; there is no terminal
// state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// ModalState is the form sub-state machine:
// Closed -> Open(Create|Edit) -> Submitting -> Closed.
type ModalState string

const (
	ModalClosed     ModalState = "closed"
	ModalCreate     ModalState = "create"
	ModalEdit       ModalState = "edit"
	ModalSubmitting ModalState = "submitting"
)

// DeleteState is the confirmation sub-state machine:
// Closed -> Confirming -> Deleting -> Closed.
type DeleteState string

const (
	DeleteClosed     DeleteState = "closed"
	DeleteConfirming DeleteState = "confirming"
	DeleteDeleting   DeleteState = "deleting"
)

// Row pairs an entity with its transient selection flag. Selection is
// never persisted.
type Row[T Entity] struct {
	Entity   T    `json:"entity"`
	Selected bool `json:"selected"`
}

// Draft is the open form: the entity being edited plus the ordered image
// preview. Every preview entry is tagged remote or pending, so removal by
// index is unambiguous.
type Draft[T Entity] struct {
	Mode    ModalState       `json:"mode"`
	Entity  T                `json:"entity"`
	Preview models.ImageList `json:"preview"`
}

// ViewModel is the full serializable state of one entity-control screen.
type ViewModel[T Entity] struct {
	State         State               `json:"state"`
	Rows          []Row[T]            `json:"rows"`
	Filtered      []int               `json:"filtered"`
	Options       map[string][]string `json:"options"`
	Filters       Filters             `json:"filters"`
	Modal         ModalState          `json:"modal"`
	Draft         *Draft[T]           `json:"draft,omitempty"`
	Delete        DeleteState         `json:"delete"`
	PendingDelete []string            `json:"pendingDelete,omitempty"`
	Saving        bool                `json:"saving"`
	Error         string              `json:"error,omitempty"`
	Toast         string              `json:"toast,omitempty"`
}

// FilteredEntities materializes the rows currently passing the filter, in
// list order.
func (vm ViewModel[T]) FilteredEntities() []T {
	out := make([]T, 0, len(vm.Filtered))
	for _, i := range vm.Filtered {
		out = append(out, vm.Rows[i].Entity)
	}
	return out
}

// selectedIDs returns the ids of rows that are both selected and in the
// filtered view.
func (vm ViewModel[T]) selectedIDs() []string {
	var ids []string
	for _, i := range vm.Filtered {
		if vm.Rows[i].Selected {
			ids = append(ids, vm.Rows[i].Entity.EntityID())
		}
	}
	return ids
}

func (vm ViewModel[T]) clone() ViewModel[T] {
	out := vm
	out.Rows = append([]Row[T]{}, vm.Rows...)
	out.Filtered = append([]int{}, vm.Filtered...)
	out.PendingDelete = append([]string{}, vm.PendingDelete...)
	out.Options = make(map[string][]string, len(vm.Options))
	for k, v := range vm.Options {
		out.Options[k] = append([]string{}, v...)
	}
	if vm.Draft != nil {
		draft := *vm.Draft
		draft.Preview = append(models.ImageList{}, vm.Draft.Preview...)
		out.Draft = &draft
	}
	return out
}
