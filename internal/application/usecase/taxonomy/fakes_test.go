package taxonomy

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

type fakeTaxonomyRepository struct {
	mu        sync.Mutex
	templates map[entity.NodeKind][]*entity.TaxonomyNode
	owned     map[entity.NodeKind][]*entity.TaxonomyNode
	createErr map[int]error
	calls     int
	findErr   error
}

func newFakeTaxonomyRepository() *fakeTaxonomyRepository {
	return &fakeTaxonomyRepository{
		templates: map[entity.NodeKind][]*entity.TaxonomyNode{},
		owned:     map[entity.NodeKind][]*entity.TaxonomyNode{},
		createErr: map[int]error{},
	}
}

func (r *fakeTaxonomyRepository) FindTemplates(_ context.Context, kind entity.NodeKind) ([]*entity.TaxonomyNode, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.templates[kind], nil
}

func (r *fakeTaxonomyRepository) CreateOwned(_ context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) ([]*entity.TaxonomyNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := r.calls
	r.calls++
	if err, ok := r.createErr[call]; ok {
		return nil, err
	}

	for _, n := range nodes {
		if n.ParentID != nil && !r.hasOwned(kind, *n.ParentID) {
			return nil, errors.New("foreign key violation: parent does not exist")
		}
	}
	r.owned[kind] = append(r.owned[kind], nodes...)
	return nodes, nil
}

func (r *fakeTaxonomyRepository) hasOwned(kind entity.NodeKind, id uuid.UUID) bool {
	for _, n := range r.owned[kind] {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (r *fakeTaxonomyRepository) CountOwned(_ context.Context, kind entity.NodeKind, groupID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.owned[kind] {
		if n.GroupID != nil && *n.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTaxonomyRepository) FindOwnedByGroup(_ context.Context, kind entity.NodeKind, groupID uuid.UUID) ([]*entity.TaxonomyNode, error) {
	var nodes []*entity.TaxonomyNode
	for _, n := range r.owned[kind] {
		if n.GroupID != nil && *n.GroupID == groupID {
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].SortOrder < nodes[j].SortOrder })
	return nodes, nil
}

func (r *fakeTaxonomyRepository) UpsertTemplates(_ context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) (int, error) {
	r.templates[kind] = append(r.templates[kind], nodes...)
	return len(nodes), nil
}

// fakeTransactor discards the owned rows written inside a failed transaction.
type fakeTransactor struct {
	repo *fakeTaxonomyRepository
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := map[entity.NodeKind][]*entity.TaxonomyNode{}
	for k, v := range t.repo.owned {
		snapshot[k] = append([]*entity.TaxonomyNode(nil), v...)
	}
	if err := fn(ctx); err != nil {
		t.repo.owned = snapshot
		return err
	}
	return nil
}

type fakeGroupRepository struct {
	members map[uuid.UUID][]uuid.UUID
	err     error
}

func (r *fakeGroupRepository) CreateGroup(context.Context, *entity.Group) error { return nil }

func (r *fakeGroupRepository) FindGroupByID(context.Context, uuid.UUID) (*entity.Group, error) {
	return nil, nil
}

func (r *fakeGroupRepository) FindGroupsByUserID(context.Context, uuid.UUID) ([]*entity.GroupListItem, error) {
	return nil, nil
}

func (r *fakeGroupRepository) CreateMember(context.Context, *entity.GroupMember) error { return nil }

func (r *fakeGroupRepository) IsUserMemberOfGroup(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, id := range r.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepository) LockGroup(context.Context, uuid.UUID) error { return r.err }

func newTemplate(kind entity.NodeKind, name, code string, parent *entity.TaxonomyNode, sortOrder int) *entity.TaxonomyNode {
	var parentID *uuid.UUID
	if parent != nil {
		id := parent.ID
		parentID = &id
	}
	return entity.NewTemplateNode(kind, name, code, parentID, "", "", sortOrder)
}
