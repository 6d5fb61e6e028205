package service

import (
	"context"
	"fmt"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error)
	Obtener(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error)
	ListarCierres(ctx context.Context, cajaID uuid.UUID) ([]dto.CierreCajaResponse, error)
	// GenerarReporteCierre renderiza el PDF del último cierre de la caja y
	// devuelve la ruta del archivo generado.
	GenerarReporteCierre(ctx context.Context, cajaID uuid.UUID) (string, error)

	// ValidarAbiertaTx is called by the orchestrator before posting cash.
	ValidarAbiertaTx(tx *gorm.DB, cajaID uuid.UUID) (*model.Caja, error)
	// AjustarMontoEsperadoTx is the only way the expected balance moves, and
	// it always pairs the increment with an immutable MovimientoCaja of the
	// triggering transaction type.
	AjustarMontoEsperadoTx(tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal, aumentar bool, tipo string, usuarioID uuid.UUID, referenciaID *uuid.UUID, cambio *decimal.Decimal) error
}

type cajaService struct {
	repo        repository.CajaRepository
	resumen     ResumenService
	storagePath string
}

func NewCajaService(repo repository.CajaRepository, resumen ResumenService, storagePath string) CajaService {
	return &cajaService{repo: repo, resumen: resumen, storagePath: storagePath}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Abrir una caja ya abierta es un no-op que devuelve el estado vigente.
// Si la caja tuvo movimiento en un ciclo anterior sin cierre limpio, el
// monto inicial se suma al esperado en vez de pisarlo.

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}

	var caja *model.Caja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		caja, err = s.findTx(ctx, tx, cajaID)
		if err != nil {
			return err
		}
		if caja.Estado == model.CajaAbierta {
			return nil // no-op
		}

		inicial := moneda.Redondear(req.MontoInicial)
		if caja.TieneMovimiento {
			caja.MontoEsperado = moneda.Sumar(caja.MontoEsperado, inicial)
		} else {
			caja.MontoEsperado = inicial
		}
		caja.MontoInicial = inicial
		caja.Estado = model.CajaAbierta
		ahora := time.Now()
		caja.AbiertaEn = &ahora
		caja.UsuarioAperturaID = &usuarioID

		if err := s.updateTx(ctx, tx, caja); err != nil {
			return err
		}
		return s.crearMovimientoTx(ctx, tx, &model.MovimientoCaja{
			CajaID:    caja.ID,
			Tipo:      model.MovCajaApertura,
			Monto:     inicial,
			UsuarioID: usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := cajaToResponse(caja)
	return &resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Diferencia es |esperado − declarado|; Desvio conserva el signo para que
// faltante y sobrante sean distinguibles en reportes. El cierre archiva el
// ciclo en cierres_caja y resetea los campos vivos.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}

	var cierre model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		caja, err := s.findTx(ctx, tx, cajaID)
		if err != nil {
			return err
		}
		if caja.Estado != model.CajaAbierta {
			return ErrCajaYaCerrada
		}

		declarado := moneda.Redondear(req.MontoDeclarado)
		ahora := time.Now()
		abierta := ahora
		if caja.AbiertaEn != nil {
			abierta = *caja.AbiertaEn
		}
		cierre = model.CierreCaja{
			CajaID:          caja.ID,
			MontoInicial:    caja.MontoInicial,
			MontoEsperado:   caja.MontoEsperado,
			MontoDeclarado:  declarado,
			Diferencia:      moneda.RestarAbs(caja.MontoEsperado, declarado),
			Desvio:          moneda.Restar(declarado, caja.MontoEsperado),
			AbiertaEn:       abierta,
			CerradaEn:       ahora,
			UsuarioCierreID: usuarioID,
		}
		if err := s.crearCierreTx(ctx, tx, &cierre); err != nil {
			return err
		}

		caja.Estado = model.CajaCerrada
		caja.MontoInicial = moneda.Cero
		caja.MontoEsperado = moneda.Cero
		caja.TieneMovimiento = false
		caja.AbiertaEn = nil
		caja.UsuarioAperturaID = nil
		return s.updateTx(ctx, tx, caja)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.CierreCajaResponse{
		CajaID:         cierre.CajaID.String(),
		MontoInicial:   cierre.MontoInicial,
		MontoEsperado:  cierre.MontoEsperado,
		MontoDeclarado: cierre.MontoDeclarado,
		Diferencia:     cierre.Diferencia,
		Desvio:         cierre.Desvio,
		CerradaEn:      cierre.CerradaEn.Format("2006-01-02T15:04:05Z"),
	}, nil
}

func (s *cajaService) Obtener(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}
	resp := cajaToResponse(caja)
	return &resp, nil
}

func (s *cajaService) ListarCierres(ctx context.Context, cajaID uuid.UUID) ([]dto.CierreCajaResponse, error) {
	cierres, err := s.repo.ListCierres(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CierreCajaResponse, 0, len(cierres))
	for _, c := range cierres {
		out = append(out, dto.CierreCajaResponse{
			CajaID:         c.CajaID.String(),
			MontoInicial:   c.MontoInicial,
			MontoEsperado:  c.MontoEsperado,
			MontoDeclarado: c.MontoDeclarado,
			Diferencia:     c.Diferencia,
			Desvio:         c.Desvio,
			CerradaEn:      c.CerradaEn.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

func (s *cajaService) GenerarReporteCierre(ctx context.Context, cajaID uuid.UUID) (string, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return "", ErrCajaNoEncontrada
	}
	cierres, err := s.repo.ListCierres(ctx, cajaID)
	if err != nil {
		return "", err
	}
	if len(cierres) == 0 {
		return "", ErrSinCierres
	}
	ultimo := cierres[0]

	// El resumen del día puede no existir (caja abierta y cerrada sin
	// movimientos); el reporte sale igual sin esa sección.
	var resumenDia *model.ResumenCajaDiario
	if s.resumen != nil {
		if r, err := s.resumen.ObtenerDia(ctx, caja.SucursalID, cajaID, ultimo.CerradaEn); err == nil {
			resumenDia = r
		}
	}
	return infra.GenerateCierrePDF(&ultimo, resumenDia, s.storagePath)
}

func (s *cajaService) ValidarAbiertaTx(tx *gorm.DB, cajaID uuid.UUID) (*model.Caja, error) {
	caja, err := s.findTx(context.Background(), tx, cajaID)
	if err != nil {
		return nil, err
	}
	if caja.Estado != model.CajaAbierta {
		return nil, ErrCajaCerrada
	}
	return caja, nil
}

func (s *cajaService) AjustarMontoEsperadoTx(tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal, aumentar bool, tipo string, usuarioID uuid.UUID, referenciaID *uuid.UUID, cambio *decimal.Decimal) error {
	monto = moneda.Redondear(monto)
	if err := s.repo.AjustarMontoEsperadoTx(tx, cajaID, monto, aumentar); err != nil {
		return err
	}
	return s.repo.CreateMovimientoTx(tx, &model.MovimientoCaja{
		CajaID:       cajaID,
		Tipo:         tipo,
		Monto:        monto,
		UsuarioID:    usuarioID,
		ReferenciaID: referenciaID,
		Cambio:       cambio,
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────
// Las variantes *Tx toleran tx == nil (modo unit test) cayendo al repo directo.

func (s *cajaService) findTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var caja *model.Caja
	var err error
	if tx != nil {
		caja, err = s.repo.FindByIDTx(tx, id)
	} else {
		caja, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}
	return caja, nil
}

func (s *cajaService) updateTx(ctx context.Context, tx *gorm.DB, c *model.Caja) error {
	if tx != nil {
		return s.repo.UpdateTx(tx, c)
	}
	return s.repo.Update(ctx, c)
}

func (s *cajaService) crearMovimientoTx(_ context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return s.repo.CreateMovimientoTx(tx, m)
}

func (s *cajaService) crearCierreTx(_ context.Context, tx *gorm.DB, c *model.CierreCaja) error {
	return s.repo.CreateCierreTx(tx, c)
}

func cajaToResponse(c *model.Caja) dto.CajaResponse {
	var abierta *string
	if c.AbiertaEn != nil {
		t := c.AbiertaEn.Format("2006-01-02T15:04:05Z")
		abierta = &t
	}
	return dto.CajaResponse{
		ID:              c.ID.String(),
		SucursalID:      c.SucursalID.String(),
		Consecutivo:     c.Consecutivo,
		Estado:          c.Estado,
		MontoInicial:    c.MontoInicial,
		MontoEsperado:   c.MontoEsperado,
		TieneMovimiento: c.TieneMovimiento,
		AbiertaEn:       abierta,
	}
}
