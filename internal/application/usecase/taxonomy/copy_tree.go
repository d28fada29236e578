// Package taxonomy contains use cases for categories and payment methods.
package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// CopyTreeInput represents the input for copying a template forest into a group.
type CopyTreeInput struct {
	Kind        entity.NodeKind
	Templates   []*entity.TaxonomyNode
	OwnerUserID uuid.UUID
	GroupID     uuid.UUID
}

// CopyTreeOutput represents the owned nodes created by a copy.
type CopyTreeOutput struct {
	Roots    int
	Children int
	Nodes    []*entity.TaxonomyNode
}

// CopyTreeUseCase clones a template forest into owned nodes for one group,
// keeping every parent link pointed at the group's own copy of the parent.
type CopyTreeUseCase struct {
	taxonomyRepo adapter.TaxonomyRepository
	transactor   adapter.Transactor
	stepTimeout  time.Duration
}

// NewCopyTreeUseCase creates a new CopyTreeUseCase instance.
func NewCopyTreeUseCase(taxonomyRepo adapter.TaxonomyRepository, transactor adapter.Transactor, stepTimeout time.Duration) *CopyTreeUseCase {
	return &CopyTreeUseCase{
		taxonomyRepo: taxonomyRepo,
		transactor:   transactor,
		stepTimeout:  stepTimeout,
	}
}

// CopyFromTemplates reads the active templates of a kind and copies them into the group.
func (uc *CopyTreeUseCase) CopyFromTemplates(ctx context.Context, kind entity.NodeKind, ownerUserID, groupID uuid.UUID) (*CopyTreeOutput, error) {
	if !kind.IsValid() {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("cannot copy %q", kind), domainerror.ErrInvalidNodeKind)
	}

	stepCtx, cancel := uc.withTimeout(ctx)
	templates, err := uc.taxonomyRepo.FindTemplates(stepCtx, kind)
	cancel()
	if err != nil {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("failed to read %s templates", kind), err)
	}

	return uc.Execute(ctx, CopyTreeInput{
		Kind:        kind,
		Templates:   templates,
		OwnerUserID: ownerUserID,
		GroupID:     groupID,
	})
}

// Execute performs the copy. Roots are inserted first, then each following
// level once its parents exist. All inserts share one transaction.
func (uc *CopyTreeUseCase) Execute(ctx context.Context, input CopyTreeInput) (*CopyTreeOutput, error) {
	if !input.Kind.IsValid() {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("cannot copy %q", input.Kind), domainerror.ErrInvalidNodeKind)
	}
	if len(input.Templates) == 0 {
		return &CopyTreeOutput{}, nil
	}

	if err := checkUniqueCodes(input.Templates); err != nil {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("%s templates are ambiguous", input.Kind), err)
	}

	levels, err := planLevels(input.Templates)
	if err != nil {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("%s templates are malformed", input.Kind), err)
	}

	templatesByID := make(map[uuid.UUID]*entity.TaxonomyNode, len(input.Templates))
	for _, t := range input.Templates {
		templatesByID[t.ID] = t
	}

	output := &CopyTreeOutput{}
	err = uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		ownedByCode := make(map[string]*entity.TaxonomyNode, len(input.Templates))

		for depth, batch := range levels {
			if len(batch) == 0 {
				continue
			}

			rows := make([]*entity.TaxonomyNode, 0, len(batch))
			for _, template := range batch {
				parentID := resolveOwnedParent(template, templatesByID, ownedByCode)
				rows = append(rows, entity.NewOwnedCopy(template, input.OwnerUserID, input.GroupID, parentID))
			}

			stepCtx, cancel := uc.withTimeout(txCtx)
			inserted, err := uc.taxonomyRepo.CreateOwned(stepCtx, input.Kind, rows)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to insert level %d: %w", depth, err)
			}

			for _, node := range inserted {
				if node.Code != "" {
					ownedByCode[node.Code] = node
				}
			}

			if depth == 0 {
				output.Roots += len(inserted)
			} else {
				output.Children += len(inserted)
			}
			output.Nodes = append(output.Nodes, inserted...)
		}
		return nil
	})
	if err != nil {
		return nil, domainerror.NewCopyFailedError(fmt.Sprintf("failed to copy %s templates", input.Kind), err)
	}

	slog.InfoContext(ctx, "Taxonomy copied",
		"kind", input.Kind,
		"group_id", input.GroupID,
		"roots", output.Roots,
		"children", output.Children,
	)

	return output, nil
}

func (uc *CopyTreeUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.stepTimeout)
}

// checkUniqueCodes enforces that parent matching by code is unambiguous.
func checkUniqueCodes(templates []*entity.TaxonomyNode) error {
	seen := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if t.Code == "" {
			continue
		}
		if _, dup := seen[t.Code]; dup {
			return fmt.Errorf("%w: %s", domainerror.ErrDuplicateTemplateCode, t.Code)
		}
		seen[t.Code] = struct{}{}
	}
	return nil
}

// planLevels splits the templates into insertion batches. Level 0 holds the
// roots. A node joins the first level after its parent, or the first child
// level when its parent is not among the templates at all.
func planLevels(templates []*entity.TaxonomyNode) ([][]*entity.TaxonomyNode, error) {
	known := make(map[uuid.UUID]struct{}, len(templates))
	for _, t := range templates {
		known[t.ID] = struct{}{}
	}

	var roots, pending []*entity.TaxonomyNode
	for _, t := range templates {
		if t.IsRoot() {
			roots = append(roots, t)
		} else {
			pending = append(pending, t)
		}
	}

	placed := make(map[uuid.UUID]struct{}, len(templates))
	for _, r := range roots {
		placed[r.ID] = struct{}{}
	}

	levels := [][]*entity.TaxonomyNode{roots}
	for len(pending) > 0 {
		var next, rest []*entity.TaxonomyNode
		for _, t := range pending {
			_, parentKnown := known[*t.ParentID]
			_, parentPlaced := placed[*t.ParentID]
			if !parentKnown || parentPlaced {
				next = append(next, t)
			} else {
				rest = append(rest, t)
			}
		}

		if len(next) == 0 {
			return nil, fmt.Errorf("%w: %d nodes unreachable from a root", domainerror.ErrTemplateCycle, len(rest))
		}

		for _, t := range next {
			placed[t.ID] = struct{}{}
		}
		levels = append(levels, next)
		pending = rest
	}

	return levels, nil
}

// resolveOwnedParent maps a template's parent to the owned node copied from
// it, matching on code. Unresolvable parents yield nil.
func resolveOwnedParent(template *entity.TaxonomyNode, templatesByID map[uuid.UUID]*entity.TaxonomyNode, ownedByCode map[string]*entity.TaxonomyNode) *uuid.UUID {
	if template.ParentID == nil {
		return nil
	}

	parent, ok := templatesByID[*template.ParentID]
	if !ok || parent.Code == "" {
		return nil
	}

	owned, ok := ownedByCode[parent.Code]
	if !ok {
		return nil
	}

	id := owned.ID
	return &id
}
