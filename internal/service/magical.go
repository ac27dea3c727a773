package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cagmc/jwtauth/internal/models"
	"github.com/cagmc/jwtauth/internal/repo"
	"github.com/cagmc/jwtauth/pkg/logging"
)

type MagicalObjectStore interface {
	ListMagicalObjects(ctx context.Context, f repo.MagicalObjectFilter) ([]models.MagicalObject, error)
	GetMagicalObject(ctx context.Context, id uint) (*models.MagicalObject, error)
	CreateMagicalObject(ctx context.Context, obj *models.MagicalObject) error
	UpdateMagicalObject(ctx context.Context, id uint, upd *models.MagicalObject) (*models.MagicalObject, error)
	DeleteMagicalObject(ctx context.Context, id uint) error
}

type MagicalObjectService struct {
	Store MagicalObjectStore
}

func (s *MagicalObjectService) List(ctx context.Context, f repo.MagicalObjectFilter) ([]models.MagicalObject, error) {
	for _, e := range f.Elementals {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: unknown elemental %q", ErrValidation, e)
		}
	}
	if f.DiscoveredFrom != nil && f.DiscoveredTo != nil && f.DiscoveredFrom.After(*f.DiscoveredTo) {
		return nil, fmt.Errorf("%w: discovered_from is after discovered_to", ErrValidation)
	}
	return s.Store.ListMagicalObjects(ctx, f)
}

func (s *MagicalObjectService) Get(ctx context.Context, id uint) (*models.MagicalObject, error) {
	obj, err := s.Store.GetMagicalObject(ctx, id)
	return obj, mapStoreErr(err)
}

func (s *MagicalObjectService) Create(ctx context.Context, obj *models.MagicalObject) error {
	l := logging.FromContext(ctx).With("svc", "magical.create", "name", obj.Name)
	if err := validateMagicalObject(obj); err != nil {
		l.Warn("create_failed", "status", 400, "error", err)
		return err
	}
	if err := s.Store.CreateMagicalObject(ctx, obj); err != nil {
		err = mapStoreErr(err)
		l.Warn("create_failed", "error", err)
		return err
	}
	l.Info("magical_object_created", "id", obj.ID)
	return nil
}

func (s *MagicalObjectService) Update(ctx context.Context, id uint, upd *models.MagicalObject) (*models.MagicalObject, error) {
	l := logging.FromContext(ctx).With("svc", "magical.update", "id", id)
	if err := validateMagicalObject(upd); err != nil {
		l.Warn("update_failed", "status", 400, "error", err)
		return nil, err
	}
	obj, err := s.Store.UpdateMagicalObject(ctx, id, upd)
	if err != nil {
		err = mapStoreErr(err)
		l.Warn("update_failed", "error", err)
		return nil, err
	}
	l.Info("magical_object_updated")
	return obj, nil
}

func (s *MagicalObjectService) Delete(ctx context.Context, id uint) error {
	if err := s.Store.DeleteMagicalObject(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	logging.FromContext(ctx).Info("magical_object_deleted", "svc", "magical.delete", "id", id)
	return nil
}

func validateMagicalObject(obj *models.MagicalObject) error {
	var errs []error
	if strings.TrimSpace(obj.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !obj.Elemental.Valid() {
		errs = append(errs, fmt.Errorf("unknown elemental %q", obj.Elemental))
	}
	if obj.Discovered.IsZero() {
		errs = append(errs, errors.New("discovered is required"))
	}
	for i, p := range obj.Properties {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("properties[%d].name is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
