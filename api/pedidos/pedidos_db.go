package pedidos

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"fichaflow/infrastructure/audit"
	"fichaflow/infrastructure/sqlite"
	"fichaflow/models"
)

// Pedido estados.
const (
	EstadoPendiente  = "pendiente"
	EstadoEnProceso  = "en_proceso"
	EstadoCompletado = "completado"
)

// ValidEstado reports whether estado names a pedido state.
func ValidEstado(estado string) bool {
	switch estado {
	case EstadoPendiente, EstadoEnProceso, EstadoCompletado:
		return true
	}
	return false
}

func listPedidos(ctx context.Context, db *sqlite.DB) ([]PedidoView, error) {
	rows := make([]models.Pedido, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Relation("Cliente").
			OrderExpr("p.fecha_pedido DESC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make([]PedidoView, 0, len(rows))
	for _, p := range rows {
		view := PedidoView{
			ID:               p.ID,
			Descripcion:      p.Descripcion,
			Cantidad:         p.Cantidad,
			FechaPedido:      p.FechaPedido,
			FechaEntrega:     p.FechaEntrega,
			Estado:           p.Estado,
			Especificaciones: p.Especificaciones,
		}
		if p.Cliente != nil {
			view.Cliente = *p.Cliente
		}
		out = append(out, view)
	}
	return out, nil
}

func createPedido(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, in createPedidoRequest, fechaEntrega time.Time) (int64, error) {
	pedido := models.Pedido{
		ClienteID:        in.ClienteID,
		Descripcion:      in.Descripcion,
		Cantidad:         in.Cantidad,
		FechaPedido:      time.Now(),
		FechaEntrega:     fechaEntrega,
		Estado:           EstadoPendiente,
		Especificaciones: in.Especificaciones,
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Cliente)(nil)).
			Where("id = ?", in.ClienteID).
			Where("activo = ?", true).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return sqlErrClienteNotFound
		}
		if _, err := tx.NewInsert().Model(&pedido).Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, userID, "pedido.create", "pedidos", fmt.Sprintf("%d", pedido.ID), nil, pedido)
		}
		return nil
	})
	return pedido.ID, err
}

func updatePedidoEstado(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID, pedidoID int64, estado string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Pedido
		if err := tx.NewSelect().Model(&before).Where("p.id = ?", pedidoID).Limit(1).Scan(ctx); err != nil {
			return err
		}

		after := before
		after.Estado = estado
		if _, err := tx.NewUpdate().
			Model((*models.Pedido)(nil)).
			Set("estado = ?", estado).
			Where("id = ?", pedidoID).
			Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, userID, "pedido.estado", "pedidos", fmt.Sprintf("%d", pedidoID), before, after)
		}
		return nil
	})
}
