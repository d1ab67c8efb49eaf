package service

import (
	"context"
	"errors"
	"sync"
	"time"

	dealserrors "innkeeper/internal/deals/errors"
	"innkeeper/internal/deals/repository"
	"innkeeper/internal/deals/validator"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/model"
	"innkeeper/pkg/sanitizer"
)

type DealService interface {
	Create(ctx context.Context, deal *model.Deal) error
	GetByID(ctx context.Context, id string) (*model.Deal, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Deal, int64, error)
	Update(ctx context.Context, id string, updates *model.DealUpdate) error
	Delete(ctx context.Context, id string) error
	BestForStay(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*model.Deal, error)
}

type dealService struct {
	repo      repository.DealRepository
	validator *validator.DealValidator
	cfg       *config.Config
}

func NewDealService(
	repo repository.DealRepository,
	validator *validator.DealValidator,
	cfg *config.Config,
) DealService {
	return &dealService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *dealService) Create(ctx context.Context, deal *model.Deal) error {
	s.sanitize(deal)

	if err := s.validator.Validate(deal); err != nil {
		s.cfg.Log.Warn("Deal validation failed", "name", deal.Name, "error", err)
		return apperrors.Validation("Deal validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, deal); err != nil {
		s.cfg.Log.Error("Failed to create deal", "name", deal.Name, "error", err)
		return apperrors.Internal("Failed to create deal", err)
	}

	s.cfg.Log.Info("Deal created successfully",
		"id", deal.ID,
		"name", deal.Name,
		"discount_percent", deal.DiscountPercent,
		"start_date", deal.StartDate,
		"end_date", deal.EndDate,
	)
	return nil
}

func (s *dealService) GetByID(ctx context.Context, id string) (*model.Deal, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Deal ID cannot be empty")
	}

	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dealserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Deal", id)
		}
		if errors.Is(err, dealserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid deal ID format")
		}
		s.cfg.Log.Error("Failed to get deal by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve deal", err)
	}

	return deal, nil
}

func (s *dealService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Deal, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var deals []*model.Deal
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count deals", "error", errCount)
			errCount = apperrors.Internal("Failed to count deals", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		deals, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list deals", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve deals", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return deals, count, nil
}

func (s *dealService) Update(ctx context.Context, id string, updates *model.DealUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Deal ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dealserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Deal", id)
		}
		if errors.Is(err, dealserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid deal ID format")
		}
		return apperrors.Internal("Failed to check deal existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Deal update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeDealUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Deal validation failed", "id", id, "error", err)
		return apperrors.Validation("Deal validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update deal", "id", id, "error", err)
		return apperrors.Internal("Failed to update deal", err)
	}

	s.cfg.Log.Info("Deal updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *dealService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Deal ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, dealserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Deal", id)
		}
		if errors.Is(err, dealserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid deal ID format")
		}
		s.cfg.Log.Error("Failed to delete deal", "id", id, "error", err)
		return apperrors.Internal("Failed to delete deal", err)
	}

	s.cfg.Log.Info("Deal deleted successfully", "id", id)
	return nil
}

// BestForStay picks the single deal applied to a stay. Highest discount
// wins; ties break to the earlier start date, then the lower ID so the
// choice is deterministic. Returns nil when no active deal overlaps.
func (s *dealService) BestForStay(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*model.Deal, error) {
	if !checkOut.After(checkIn) {
		// Degenerate stays still bill one night starting at check-in.
		checkOut = checkIn.Add(24 * time.Hour)
	}

	candidates, err := s.repo.FindActiveInWindow(ctx, roomType, checkIn, checkOut)
	if err != nil {
		s.cfg.Log.Error("Failed to find deals for stay",
			"room_type", roomType,
			"check_in", checkIn,
			"check_out", checkOut,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to find deals for stay", err)
	}

	var best *model.Deal
	for _, d := range candidates {
		if best == nil || betterDeal(d, best) {
			best = d
		}
	}

	if best != nil {
		s.cfg.Log.Debug("Deal selected for stay",
			"deal_id", best.ID,
			"deal_name", best.Name,
			"discount_percent", best.DiscountPercent,
			"room_type", roomType,
		)
	}

	return best, nil
}

func betterDeal(a, b *model.Deal) bool {
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.Before(b.StartDate)
	}
	return a.ID < b.ID
}

func (s *dealService) sanitize(deal *model.Deal) {
	deal.Name = sanitizer.NormalizeName(deal.Name)
	deal.RoomType = sanitizer.NormalizeLabel(deal.RoomType)
}

func (s *dealService) sanitizeUpdate(updates *model.DealUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.RoomType != "" {
		updates.RoomType = sanitizer.NormalizeLabel(updates.RoomType)
	}
}

func (s *dealService) mergeDealUpdates(existing *model.Deal, updates *model.DealUpdate) *model.Deal {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.DiscountPercent != nil {
		merged.DiscountPercent = *updates.DiscountPercent
	}
	if updates.RoomType != "" {
		merged.RoomType = updates.RoomType
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.EndDate != nil {
		merged.EndDate = *updates.EndDate
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
