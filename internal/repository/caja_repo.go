package repository

import (
	"context"

	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	CreateTx(tx *gorm.DB, c *model.CuadreCaja) error
	FindAbierta(ctx context.Context) (*model.CuadreCaja, error)
	FindAbiertaTx(tx *gorm.DB) (*model.CuadreCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CuadreCaja, error)
	List(ctx context.Context, filter dto.CuadreFilter) ([]model.CuadreCaja, int64, error)
	// SumarVentasTx / SumarGastosTx bump the running counters of an OPEN
	// drawer. A closed or missing drawer matches zero rows; the bool reports
	// whether the update applied.
	SumarVentasTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error)
	SumarGastosTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error)
	// CerrarTx finalizes the drawer only if it is still open.
	CerrarTx(tx *gorm.DB, c *model.CuadreCaja) (bool, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateTx(tx *gorm.DB, c *model.CuadreCaja) error {
	return tx.Create(c).Error
}

func (r *cajaRepo) FindAbierta(ctx context.Context) (*model.CuadreCaja, error) {
	var c model.CuadreCaja
	err := r.db.WithContext(ctx).Preload("Usuario").
		Where("estado = ?", model.CajaAbierta).First(&c).Error
	return &c, err
}

func (r *cajaRepo) FindAbiertaTx(tx *gorm.DB) (*model.CuadreCaja, error) {
	var c model.CuadreCaja
	err := tx.Where("estado = ?", model.CajaAbierta).First(&c).Error
	return &c, err
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuadreCaja, error) {
	var c model.CuadreCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) List(ctx context.Context, filter dto.CuadreFilter) ([]model.CuadreCaja, int64, error) {
	var cuadres []model.CuadreCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CuadreCaja{})

	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.FechaInicio != "" {
		q = q.Where("DATE(fecha_apertura) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(fecha_apertura) <= ?", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Usuario").Order("fecha_apertura DESC").
		Limit(filter.Limit).Offset(offset).Find(&cuadres).Error
	return cuadres, total, err
}

func (r *cajaRepo) SumarVentasTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	res := tx.Model(&model.CuadreCaja{}).
		Where("id = ? AND estado = ?", id, model.CajaAbierta).
		Update("total_ventas", gorm.Expr("total_ventas + ?", monto))
	return res.RowsAffected > 0, res.Error
}

func (r *cajaRepo) SumarGastosTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	res := tx.Model(&model.CuadreCaja{}).
		Where("id = ? AND estado = ?", id, model.CajaAbierta).
		Update("total_gastos", gorm.Expr("total_gastos + ?", monto))
	return res.RowsAffected > 0, res.Error
}

func (r *cajaRepo) CerrarTx(tx *gorm.DB, c *model.CuadreCaja) (bool, error) {
	// total_ventas/total_gastos are never written here: a sale or gasto
	// committing after the caller's SELECT must not be overwritten, so
	// diferencia is computed in SQL against the live counters.
	res := tx.Model(&model.CuadreCaja{}).
		Where("id = ? AND estado = ?", c.ID, model.CajaAbierta).
		Updates(map[string]interface{}{
			"estado":         model.CajaCerrada,
			"fecha_cierre":   c.FechaCierre,
			"monto_final":    c.MontoFinal,
			"diferencia":     gorm.Expr("round(? - (monto_inicial + total_ventas - total_gastos), 2)", c.MontoFinal),
			"usuario_cierre": c.UsuarioCierre,
			"notas_cierre":   c.NotasCierre,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	// Reload so the caller sees the counters and diferencia as committed.
	return true, tx.First(c, "id = ?", c.ID).Error
}
