// Package mapping implements the lookup-or-create contract for external
// entity identifiers. Every integration that mirrors a local entity into an
// external system goes through here so the mapping invariant (one external
// ID per local entity and location) is enforced in one place.
package mapping

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
	"github.com/karage/integrations/app/repository"
)

// Creator produces the external entity for a local one, typically by calling
// the provider's API. It is only invoked when no mapping exists yet.
type Creator func(ctx context.Context) (externalID string, err error)

// Mapper resolves local entities to external IDs with idempotent
// lookup-or-create semantics.
type Mapper struct {
	repo repository.MappingRepository
}

// New creates a mapper on top of a mapping repository.
func New(repo repository.MappingRepository) *Mapper {
	return &Mapper{repo: repo}
}

// ResolveOrCreate returns the external ID mapped to (integration, entityType,
// localID, locationID) and whether this call created the mapping. An existing
// mapping is returned as stored, without re-validation against the external
// system. On a miss the creator runs and its result is inserted atomically:
// if a concurrent request won the insert, the stored ID wins, created is
// false and the freshly created external entity is logged as orphaned.
// Creator failures surface unchanged and nothing is inserted.
func (m *Mapper) ResolveOrCreate(ctx context.Context, integration, entityType string, localID, locationID uint, create Creator) (string, bool, error) {
	existing, err := m.repo.Find(integration, entityType, localID, locationID)
	if err == nil {
		return existing.ExternalID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, err
	}

	externalID, err := create(ctx)
	if err != nil {
		return "", false, err
	}

	created, stored, err := m.repo.InsertIfAbsent(&models.ExternalMapping{
		Integration: integration,
		EntityType:  entityType,
		LocalID:     localID,
		LocationID:  locationID,
		ExternalID:  externalID,
	})
	if err != nil {
		return "", false, err
	}
	if !created && stored.ExternalID != externalID {
		log.Printf("mapping: lost insert race for %s/%s local=%d location=%d, external entity %s is orphaned",
			integration, entityType, localID, locationID, externalID)
	}
	return stored.ExternalID, created, nil
}

// Resolve returns the external ID for an existing mapping, or "" with a
// gorm.ErrRecordNotFound when none exists.
func (m *Mapper) Resolve(integration, entityType string, localID, locationID uint) (string, error) {
	existing, err := m.repo.Find(integration, entityType, localID, locationID)
	if err != nil {
		return "", err
	}
	return existing.ExternalID, nil
}
