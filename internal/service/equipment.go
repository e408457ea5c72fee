package service

import (
	"context"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
)

type equipmentService struct {
	txr  repository.Transactor
	repo repository.EquipmentRepository
}

func NewEquipmentService(txr repository.Transactor, repo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{
		txr:  txr,
		repo: repo,
	}
}

// AddEquipment creates an item with every unit available.
func (s *equipmentService) AddEquipment(ctx context.Context, input domain.EquipmentInput) (*domain.Equipment, error) {
	input = normalizeEquipment(input)
	logger.EnterMethod("EquipmentService.AddEquipment", "serial_number", input.SerialNumber)

	if err := validateInput(input); err != nil {
		logger.Rejected("EquipmentService.AddEquipment", "validation", "error", err)
		return nil, err
	}

	eq := &domain.Equipment{
		Name:              input.Name,
		Category:          input.Category,
		SerialNumber:      input.SerialNumber,
		Condition:         input.Condition,
		TotalQuantity:     input.TotalQuantity,
		AvailableQuantity: input.TotalQuantity,
		Description:       input.Description,
	}
	if err := s.repo.Create(ctx, eq); err != nil {
		logger.ExitMethodWithError("EquipmentService.AddEquipment", err)
		return nil, err
	}

	logger.ExitMethod("EquipmentService.AddEquipment", "equipment_id", eq.ID)
	return eq, nil
}

// EditEquipment updates the item. A change in total quantity shifts the
// available quantity by the same amount, floored at zero.
func (s *equipmentService) EditEquipment(ctx context.Context, id int32, input domain.EquipmentInput) (*domain.Equipment, error) {
	input = normalizeEquipment(input)
	logger.EnterMethod("EquipmentService.EditEquipment", "equipment_id", id)

	if err := validateInput(input); err != nil {
		logger.Rejected("EquipmentService.EditEquipment", "validation", "error", err)
		return nil, err
	}

	var updated *domain.Equipment
	err := s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		eq, err := repos.Equipment.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		eq.AvailableQuantity = domain.RebalancedAvailable(eq.AvailableQuantity, eq.TotalQuantity, input.TotalQuantity)
		eq.Name = input.Name
		eq.Category = input.Category
		eq.SerialNumber = input.SerialNumber
		eq.Condition = input.Condition
		eq.TotalQuantity = input.TotalQuantity
		eq.Description = input.Description

		if err := repos.Equipment.Update(ctx, eq); err != nil {
			return err
		}
		updated = eq
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("EquipmentService.EditEquipment", err, "equipment_id", id)
		return nil, err
	}

	logger.ExitMethod("EquipmentService.EditEquipment", "equipment_id", id, "available", updated.AvailableQuantity)
	return updated, nil
}

func (s *equipmentService) DeleteEquipment(ctx context.Context, id int32) error {
	logger.EnterMethod("EquipmentService.DeleteEquipment", "equipment_id", id)

	err := s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		if _, err := repos.Equipment.GetForUpdate(ctx, id); err != nil {
			return err
		}
		active, err := repos.Rentals.CountActiveByEquipment(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.HasActiveRentals("item", active)
		}
		return repos.Equipment.Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("EquipmentService.DeleteEquipment", err, "equipment_id", id)
		return err
	}

	logger.ExitMethod("EquipmentService.DeleteEquipment", "equipment_id", id)
	return nil
}

func (s *equipmentService) GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *equipmentService) BrowseEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	if filter.Condition != "" && !filter.Condition.Valid() {
		return nil, domain.ValidationError("condition must be one of: new, good, fair, poor")
	}
	return s.repo.Search(ctx, filter)
}

func (s *equipmentService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *equipmentService) Availability(ctx context.Context, id *int32) ([]domain.Availability, error) {
	return s.repo.Availability(ctx, id)
}
