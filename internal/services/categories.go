package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// CategoryStore is the persistence surface the category service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID int64, typ core.EntryType) ([]core.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, name string, typ core.EntryType) (core.Category, error)
	CategoryRefCounts(ctx context.Context, id int64) (transactions, budgets int64, err error)
	DeleteCategory(ctx context.Context, userID, id int64) error
}

type CategoryService struct {
	store  CategoryStore
	logger *log.Logger
}

func NewCategoryService(store CategoryStore, logger *log.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger.WithComponent(log.ComponentService),
	}
}

func (s *CategoryService) Create(ctx context.Context, ownerUserID int64, name string, typ core.EntryType) (core.Category, error) {
	c := core.Category{
		UserID: ownerUserID,
		Name:   strings.TrimSpace(name),
		Type:   typ,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	// The UNIQUE(user_id, name) constraint is the final arbiter; no
	// pre-check, the insert either lands or reports the duplicate.
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}

	s.logger.InfoContext(ctx, "category created",
		log.FieldUserID, ownerUserID,
		log.FieldCategoryID, created.ID,
		"name", created.Name,
		"type", string(created.Type))
	return created, nil
}

func (s *CategoryService) Get(ctx context.Context, ownerUserID, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, ownerUserID, id)
}

// List returns the caller's categories, optionally restricted to one
// type.
func (s *CategoryService) List(ctx context.Context, ownerUserID int64, typ core.EntryType) ([]core.Category, error) {
	if typ != "" && !typ.Valid() {
		return nil, core.ErrInvalidType
	}
	return s.store.ListCategories(ctx, ownerUserID, typ)
}

// Update applies a partial change. Changing the type is refused once
// any transaction or budget references the category, so existing rows
// never drift out of agreement with it.
func (s *CategoryService) Update(ctx context.Context, ownerUserID, id int64, name *string, typ *core.EntryType) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, ownerUserID, id)
	if err != nil {
		return core.Category{}, err
	}

	if name != nil {
		existing.Name = strings.TrimSpace(*name)
	}
	if typ != nil && *typ != existing.Type {
		txCount, budgetCount, err := s.store.CategoryRefCounts(ctx, id)
		if err != nil {
			return core.Category{}, fmt.Errorf("check category references: %w", err)
		}
		if txCount > 0 || budgetCount > 0 {
			return core.Category{}, core.ErrInUse
		}
		existing.Type = *typ
	}
	if err := existing.Validate(); err != nil {
		return core.Category{}, err
	}

	return s.store.UpdateCategory(ctx, ownerUserID, id, existing.Name, existing.Type)
}

// Delete removes a category only when nothing references it.
func (s *CategoryService) Delete(ctx context.Context, ownerUserID, id int64) error {
	if _, err := s.store.GetCategory(ctx, ownerUserID, id); err != nil {
		return err
	}

	txCount, budgetCount, err := s.store.CategoryRefCounts(ctx, id)
	if err != nil {
		return fmt.Errorf("check category references: %w", err)
	}
	if txCount > 0 || budgetCount > 0 {
		return core.ErrInUse
	}

	if err := s.store.DeleteCategory(ctx, ownerUserID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "category deleted",
		log.FieldUserID, ownerUserID,
		log.FieldCategoryID, id)
	return nil
}
