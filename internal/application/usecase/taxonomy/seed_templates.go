package taxonomy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
)

// SeedTemplatesInput represents the template forests to make available.
type SeedTemplatesInput struct {
	Templates map[entity.NodeKind][]*entity.TaxonomyNode
}

// SeedTemplatesOutput reports how many template nodes were inserted per kind.
type SeedTemplatesOutput struct {
	Inserted map[entity.NodeKind]int
}

// SeedTemplatesUseCase makes sure the shared template taxonomy exists.
// Templates already present (matched by code) are left untouched.
type SeedTemplatesUseCase struct {
	taxonomyRepo adapter.TaxonomyRepository
	transactor   adapter.Transactor
}

// NewSeedTemplatesUseCase creates a new SeedTemplatesUseCase instance.
func NewSeedTemplatesUseCase(taxonomyRepo adapter.TaxonomyRepository, transactor adapter.Transactor) *SeedTemplatesUseCase {
	return &SeedTemplatesUseCase{
		taxonomyRepo: taxonomyRepo,
		transactor:   transactor,
	}
}

// Execute performs the seeding.
func (uc *SeedTemplatesUseCase) Execute(ctx context.Context, input SeedTemplatesInput) (*SeedTemplatesOutput, error) {
	output := &SeedTemplatesOutput{Inserted: make(map[entity.NodeKind]int, len(entity.NodeKinds))}

	for _, kind := range entity.NodeKinds {
		templates := input.Templates[kind]
		if len(templates) == 0 {
			continue
		}

		if err := checkUniqueCodes(templates); err != nil {
			return nil, fmt.Errorf("invalid %s templates: %w", kind, err)
		}
		if _, err := planLevels(templates); err != nil {
			return nil, fmt.Errorf("invalid %s templates: %w", kind, err)
		}

		err := uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			inserted, err := uc.taxonomyRepo.UpsertTemplates(txCtx, kind, templates)
			if err != nil {
				return err
			}
			output.Inserted[kind] = inserted
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s templates: %w", kind, err)
		}

		slog.InfoContext(ctx, "Templates seeded", "kind", kind, "inserted", output.Inserted[kind])
	}

	return output, nil
}
