package repository

import (
	"context"
	"fmt"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	ListHoy(ctx context.Context) ([]model.Venta, error)
	// NextNumeroFactura draws the next invoice number from the postgres
	// sequence and formats it; gaps on rollback are acceptable.
	NextNumeroFactura(tx *gorm.DB) (string, error)
	// AnularTx flips the void flags; it never deletes the row. Guarded on
	// anulada=false — the bool reports whether this call claimed the void.
	AnularTx(tx *gorm.DB, id uuid.UUID, motivo string, usuarioID uuid.UUID) (bool, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Cliente").Preload("Usuario").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	switch filter.Estado {
	case "anuladas":
		q = q.Where("anulada = true")
	case "all":
		// no filter
	default:
		q = q.Where("anulada = false")
	}

	if filter.NumeroFactura != "" {
		q = q.Where("numero_factura = ?", filter.NumeroFactura)
	}
	if filter.FechaInicio != "" {
		q = q.Where("DATE(fecha_venta) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(fecha_venta) <= ?", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles.Producto").Preload("Cliente").
		Order("fecha_venta DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) ListHoy(ctx context.Context) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("DATE(fecha_venta) = CURRENT_DATE AND anulada = false").
		Preload("Detalles.Producto").Preload("Cliente").
		Order("fecha_venta DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) NextNumeroFactura(tx *gorm.DB) (string, error) {
	var num int64
	if err := tx.Raw("SELECT nextval('ventas_numero_factura_seq')").Scan(&num).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("F-%08d", num), nil
}

func (r *ventaRepo) AnularTx(tx *gorm.DB, id uuid.UUID, motivo string, usuarioID uuid.UUID) (bool, error) {
	res := tx.Model(&model.Venta{}).
		Where("id = ? AND anulada = false", id).
		Updates(map[string]interface{}{
			"anulada":           true,
			"motivo_anulacion":  motivo,
			"usuario_anulacion": usuarioID,
			"fecha_anulacion":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
