package infra

import (
	"fmt"

	"tiendapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// AutoMigrate cannot express (partial and composite unique indexes).
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
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Shared with integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Sucursal{},
		&model.GrupoProducto{},
		&model.Producto{},
		&model.Existencia{},
		&model.MovimientoInventario{},
		&model.Caja{},
		&model.CierreCaja{},
		&model.MovimientoCaja{},
		&model.ResumenCajaDiario{},
		&model.ResumenTransaccion{},
		&model.Entidad{},
		&model.Transaccion{},
		&model.DetalleTransaccion{},
		&model.Descuento{},
		&model.DescuentoAplicado{},
		&model.Credito{},
		&model.Cuota{},
		&model.PagoCredito{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot fully handle.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Una línea nunca acumula dos registros aplicados de la misma definición.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_aplicado_detalle_descuento') THEN
		    CREATE UNIQUE INDEX idx_aplicado_detalle_descuento
		        ON descuentos_aplicados (detalle_id, descuento_id);
		  END IF;
		END $$`,
		// Índice parcial para el tablero de créditos abiertos por entidad.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_creditos_abiertos_entidad') THEN
		    CREATE INDEX idx_creditos_abiertos_entidad
		        ON creditos (entidad_id)
		        WHERE estado = 'ABIERTO';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
