package repo

import (
	"context"
	"time"

	"github.com/cagmc/jwtauth/internal/models"
)

type MagicalObjectFilter struct {
	Name           string
	Elementals     []models.ElementalType
	DiscoveredFrom *time.Time
	DiscoveredTo   *time.Time
}

func (r *GormRepo) ListMagicalObjects(ctx context.Context, f MagicalObjectFilter) ([]models.MagicalObject, error) {
	q := r.DB.WithContext(ctx).Model(&models.MagicalObject{})

	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if len(f.Elementals) > 0 {
		q = q.Where("elemental IN ?", f.Elementals)
	}
	if f.DiscoveredFrom != nil {
		q = q.Where("discovered >= ?", *f.DiscoveredFrom)
	}
	if f.DiscoveredTo != nil {
		q = q.Where("discovered <= ?", *f.DiscoveredTo)
	}

	var items []models.MagicalObject
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetMagicalObject(ctx context.Context, id uint) (*models.MagicalObject, error) {
	var obj models.MagicalObject
	if err := r.DB.WithContext(ctx).Preload("Properties").First(&obj, id).Error; err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return &obj, nil
}

func (r *GormRepo) CreateMagicalObject(ctx context.Context, obj *models.MagicalObject) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		var taken int64
		if err := tx.DB.Model(&models.MagicalObject{}).
			Where("name = ?", obj.Name).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}
		return tx.DB.Create(obj).Error
	})
}

// UpdateMagicalObject overwrites the scalar fields of the object with id and
// replaces its property list.
func (r *GormRepo) UpdateMagicalObject(ctx context.Context, id uint, upd *models.MagicalObject) (*models.MagicalObject, error) {
	var obj models.MagicalObject
	err := r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.First(&obj, id).Error; err != nil {
			return notFound(err, ErrNotFound)
		}

		var taken int64
		if err := tx.DB.Model(&models.MagicalObject{}).
			Where("name = ? AND id <> ?", upd.Name, id).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		obj.Name = upd.Name
		obj.Description = upd.Description
		obj.Elemental = upd.Elemental
		obj.Discovered = upd.Discovered
		if err := tx.DB.Omit("Properties").Save(&obj).Error; err != nil {
			return err
		}

		if err := tx.DB.Where("magical_object_id = ?", id).Delete(&models.MagicalProperty{}).Error; err != nil {
			return err
		}
		obj.Properties = make([]models.MagicalProperty, 0, len(upd.Properties))
		for _, p := range upd.Properties {
			obj.Properties = append(obj.Properties, models.MagicalProperty{
				MagicalObjectID: id,
				Name:            p.Name,
				Value:           p.Value,
			})
		}
		if len(obj.Properties) > 0 {
			if err := tx.DB.Create(&obj.Properties).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (r *GormRepo) DeleteMagicalObject(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Delete(&models.MagicalObject{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.DB.Where("magical_object_id = ?", id).Delete(&models.MagicalProperty{}).Error
	})
}
