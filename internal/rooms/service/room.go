package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	roomserrors "innkeeper/internal/rooms/errors"
	"innkeeper/internal/rooms/repository"
	"innkeeper/internal/rooms/validator"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/model"
	"innkeeper/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Search(ctx context.Context, roomType, status string, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)
	s.applyDefaults(room)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"number", room.Number,
			"room_type", room.RoomType,
			"error", err,
		)
		return apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByNumber(sessCtx, room.Number)
		if err != nil && !errors.Is(err, roomserrors.ErrNotFound) {
			return fmt.Errorf("failed to check for duplicate room number: %w", err)
		}
		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Room number %s already exists (id: %s)", room.Number, existing.ID,
			))
		}

		if err := s.repo.Create(sessCtx, room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return nil
	})

	if err != nil {
		s.cfg.Log.Error("Failed to create room",
			"number", room.Number,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"number", room.Number,
		"room_type", room.RoomType,
		"rate", room.Rate,
	)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		s.cfg.Log.Error("Failed to get room by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Search(ctx context.Context, roomType, status string, limit int, offset int64) ([]*model.Room, int64, error) {
	roomType = sanitizer.NormalizeLabel(roomType)
	status = sanitizer.NormalizeLabel(status)
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTypeAndStatus(ctx, roomType, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms by search", "room_type", roomType, "status", status, "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindByTypeAndStatus(ctx, roomType, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search rooms", "room_type", roomType, "status", status, "error", errFind)
			errFind = apperrors.Internal("Failed to search rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to check room existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeRoomUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Room validation failed", "id", id, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if merged.Number != existing.Number {
			duplicate, err := s.repo.FindByNumber(sessCtx, merged.Number)
			if err != nil && !errors.Is(err, roomserrors.ErrNotFound) {
				return fmt.Errorf("failed to check for duplicate room number: %w", err)
			}
			if duplicate != nil && duplicate.ID != id {
				return apperrors.Conflict(fmt.Sprintf("Room number %s already exists", merged.Number))
			}
		}

		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update room", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "number", merged.Number)
	return nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) sanitize(room *model.Room) {
	room.Number = sanitizer.TrimAndNormalize(room.Number)
	room.RoomType = sanitizer.NormalizeLabel(room.RoomType)
	room.Description = sanitizer.TrimAndNormalize(room.Description)
	room.Amenities = sanitizer.NormalizeAmenities(room.Amenities)
	room.Status = sanitizer.NormalizeLabel(room.Status)
}

func (s *roomService) applyDefaults(room *model.Room) {
	if room.Status == "" {
		room.Status = config.RoomAvailable
	}
}

func (s *roomService) sanitizeUpdate(updates *model.RoomUpdate) {
	if updates.Number != "" {
		updates.Number = sanitizer.TrimAndNormalize(updates.Number)
	}
	if updates.RoomType != "" {
		updates.RoomType = sanitizer.NormalizeLabel(updates.RoomType)
	}
	if updates.Description != "" {
		updates.Description = sanitizer.TrimAndNormalize(updates.Description)
	}
	if updates.Amenities != nil {
		normalized := sanitizer.NormalizeAmenities(*updates.Amenities)
		updates.Amenities = &normalized
	}
	if updates.Status != "" {
		updates.Status = sanitizer.NormalizeLabel(updates.Status)
	}
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Number != "" {
		merged.Number = updates.Number
	}
	if updates.RoomType != "" {
		merged.RoomType = updates.RoomType
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Rate != nil {
		merged.Rate = *updates.Rate
	}
	if updates.MonthlyRates != nil {
		merged.MonthlyRates = *updates.MonthlyRates
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
