// Command seedplant provisions one user per plant role plus a demo
// client, so a fresh database is immediately usable.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/uptrace/bun"

	"fichaflow/api/auth"
	"fichaflow/infrastructure/rbac"
	"fichaflow/infrastructure/sqlite"
	"fichaflow/pipeline"
)

type seedUser struct {
	nombre string
	email  string
	rol    string
	area   string
}

func main() {
	dbPath := getenv("SQLITE_PATH", "fichaflow.db")
	password := getenv("SEED_PASSWORD", "Planta2024!Segura")

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db, os.Getenv("MIGRATIONS_DIR")); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	users := []seedUser{
		{nombre: "Carlos Mendoza", email: "jefe@planta.local", rol: rbac.RoleJefeProduccion},
		{nombre: "Ana Torres", email: "extrusion@planta.local", rol: rbac.RoleOperarioExtrusion, area: pipeline.AreaExtrusion},
		{nombre: "Luis Ramírez", email: "corte@planta.local", rol: rbac.RoleOperarioCorte, area: pipeline.AreaCorte},
		{nombre: "María García", email: "laminado@planta.local", rol: rbac.RoleOperarioLaminado, area: pipeline.AreaLaminado},
		{nombre: "Pedro Sánchez", email: "sellado@planta.local", rol: rbac.RoleOperarioSellado, area: pipeline.AreaSellado},
		{nombre: "Laura Díaz", email: "impresion@planta.local", rol: rbac.RoleOperarioImpresion, area: pipeline.AreaImpresion},
		{nombre: "Jorge Herrera", email: "calidad@planta.local", rol: rbac.RoleControlCalidad},
	}

	for _, u := range users {
		if err := auth.UpsertUser(context.Background(), db, u.nombre, u.email, u.rol, u.area, password); err != nil {
			log.Fatalf("seed user %s: %v", u.email, err)
		}
	}

	if err := seedDemoCliente(db); err != nil {
		log.Fatalf("seed cliente: %v", err)
	}

	fmt.Printf("seeded %d users (password from SEED_PASSWORD) and demo cliente\n", len(users))
}

func seedDemoCliente(db *sqlite.DB) error {
	return db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		var count int
		if err := tx.NewRaw(`SELECT COUNT(*) FROM clientes`).Scan(ctx, &count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO clientes (nombre, email, telefono, direccion, activo)
VALUES ('Empaques del Norte S.A.', 'compras@empaquesnorte.com', '555-0134', 'Av. Industrial 220', 1)`)
		return err
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
