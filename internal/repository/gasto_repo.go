package repository

import (
	"context"
	"time"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"gorm.io/gorm"
)

type GastoRepository interface {
	CreateTx(tx *gorm.DB, g *model.Gasto) error
	List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error)
	// ListEntre returns the expenses recorded inside a drawer session window.
	ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Gasto, error)
	DB() *gorm.DB
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) CreateTx(tx *gorm.DB, g *model.Gasto) error {
	return tx.Create(g).Error
}

func (r *gastoRepo) List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error) {
	var gastos []model.Gasto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Gasto{})

	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.FechaInicio != "" {
		q = q.Where("DATE(fecha_gasto) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(fecha_gasto) <= ?", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Usuario").Order("fecha_gasto DESC").
		Limit(filter.Limit).Offset(offset).Find(&gastos).Error
	return gastos, total, err
}

func (r *gastoRepo) ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := r.db.WithContext(ctx).
		Where("fecha_gasto >= ? AND fecha_gasto <= ?", desde, hasta).
		Order("fecha_gasto ASC").Find(&gastos).Error
	return gastos, err
}

func (r *gastoRepo) DB() *gorm.DB { return r.db }
