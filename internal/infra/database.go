package infra

import (
	"fmt"

	"github.com/oajacap/kissu/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// GORM cannot express (the invoice sequence and the single-open-drawer partial
// unique index).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates / updates the schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Lote{},
		&model.Cliente{},
		&model.Usuario{},
		&model.MovimientoInventario{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.CuadreCaja{},
		&model.Gasto{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle. Each
// statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Invoice numbers come from a dedicated sequence so concurrent sales
		// never collide; numbers burnt by rolled-back transactions leave gaps,
		// which is acceptable.
		{"invoice number sequence",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_factura_seq START 1`},
		// At most one open drawer system-wide. The service also checks inside
		// the opening transaction; this index is the authoritative guard under
		// concurrency.
		{"single open drawer partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cuadre_caja_abierta') THEN
    CREATE UNIQUE INDEX uni_cuadre_caja_abierta ON cuadre_caja ((estado)) WHERE estado = 'abierta';
  END IF;
END $$`},
		{"movimientos fecha index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_fecha') THEN
    CREATE INDEX idx_movimientos_fecha ON movimientos_inventario (fecha_movimiento DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
