package clientes

import (
	"context"

	"github.com/uptrace/bun"

	"fichaflow/infrastructure/sqlite"
	"fichaflow/models"
)

func listClientes(ctx context.Context, db *sqlite.DB) ([]models.Cliente, error) {
	out := make([]models.Cliente, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&out).
			Where("activo = ?", true).
			OrderExpr("nombre ASC").
			Scan(ctx)
	})
	return out, err
}

func createCliente(ctx context.Context, db *sqlite.DB, in createClienteRequest) (int64, error) {
	cliente := models.Cliente{
		Nombre:    in.Nombre,
		Email:     in.Email,
		Telefono:  in.Telefono,
		Direccion: in.Direccion,
		Activo:    true,
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&cliente).Exec(ctx)
		return err
	})
	return cliente.ID, err
}
