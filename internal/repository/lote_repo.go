package repository

import (
	"context"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoteRepository interface {
	CreateTx(tx *gorm.DB, l *model.Lote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error)
	FindByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Lote, error)
	List(ctx context.Context, filter dto.LoteFilter) ([]model.Lote, int64, error)
	// ListProximosVencer returns lots with remaining quantity expiring within dias.
	ListProximosVencer(ctx context.Context, dias int) ([]model.Lote, error)

	// DescontarCantidadTx only applies when cantidad covers the request;
	// otherwise it returns ErrStockInsuficiente and writes nothing.
	DescontarCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	ReponerCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	DB() *gorm.DB
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) CreateTx(tx *gorm.DB, l *model.Lote) error {
	return tx.Create(l).Error
}

func (r *loteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error) {
	var l model.Lote
	err := r.db.WithContext(ctx).Preload("Producto").First(&l, id).Error
	return &l, err
}

func (r *loteRepo) FindByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Lote, error) {
	var lotes []model.Lote
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("fecha_vencimiento ASC NULLS LAST").Find(&lotes).Error
	return lotes, err
}

func (r *loteRepo) List(ctx context.Context, filter dto.LoteFilter) ([]model.Lote, int64, error) {
	var lotes []model.Lote
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Lote{})
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").Order("fecha_ingreso DESC").
		Limit(filter.Limit).Offset(offset).Find(&lotes).Error
	return lotes, total, err
}

func (r *loteRepo) ListProximosVencer(ctx context.Context, dias int) ([]model.Lote, error) {
	var lotes []model.Lote
	err := r.db.WithContext(ctx).Preload("Producto").
		Where("cantidad > 0 AND fecha_vencimiento IS NOT NULL").
		Where("fecha_vencimiento <= CURRENT_DATE + make_interval(days => ?)", dias).
		Order("fecha_vencimiento ASC").Find(&lotes).Error
	return lotes, err
}

func (r *loteRepo) DescontarCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	res := tx.Model(&model.Lote{}).
		Where("id = ? AND cantidad >= ?", id, cantidad).
		Update("cantidad", gorm.Expr("cantidad - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}

func (r *loteRepo) ReponerCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Lote{}).Where("id = ?", id).
		Update("cantidad", gorm.Expr("cantidad + ?", cantidad)).Error
}

func (r *loteRepo) DB() *gorm.DB { return r.db }
