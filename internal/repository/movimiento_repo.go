package repository

import (
	"context"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"gorm.io/gorm"
)

// MovimientoRepository records inventory movements. The table is append-only:
// no update or delete methods exist on purpose.
type MovimientoRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error)
	DB() *gorm.DB
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	var movs []model.MovimientoInventario
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})

	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.FechaInicio != "" {
		q = q.Where("DATE(fecha_movimiento) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(fecha_movimiento) <= ?", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").Preload("Usuario").
		Order("fecha_movimiento DESC").
		Limit(filter.Limit).Offset(offset).Find(&movs).Error
	return movs, total, err
}

func (r *movimientoRepo) DB() *gorm.DB { return r.db }
