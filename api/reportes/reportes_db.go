package reportes

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/uptrace/bun"

	"fichaflow/infrastructure/sqlite"
)

func writeAvancesCSV(ctx context.Context, db *sqlite.DB, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"numero_ficha", "area", "operario", "fecha_inicio", "cantidad_procesada", "tiempo_operacion_min", "observaciones"}
	if err := writer.Write(header); err != nil {
		return err
	}

	type row struct {
		NumeroFicha       string `bun:"numero_ficha"`
		Area              string `bun:"area"`
		Operario          string `bun:"operario"`
		FechaInicio       string `bun:"fecha_inicio"`
		CantidadProcesada int64  `bun:"cantidad_procesada"`
		TiempoOperacion   int64  `bun:"tiempo_operacion"`
		Observaciones     string `bun:"observaciones"`
	}

	rows := make([]row, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT ft.numero_ficha, apa.area, u.nombre AS operario,
       strftime('%d/%m/%Y %H:%M', apa.fecha_inicio) AS fecha_inicio,
       apa.cantidad_procesada, apa.tiempo_operacion,
       COALESCE(apa.observaciones, '') AS observaciones
FROM avances_por_area apa
JOIN fichas_tecnicas ft ON ft.id = apa.ficha_tecnica_id
JOIN usuarios u ON u.id = apa.operario_id
ORDER BY apa.fecha_inicio ASC, apa.id ASC`).Scan(ctx, &rows)
	})
	if err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.NumeroFicha,
			r.Area,
			r.Operario,
			r.FechaInicio,
			strconv.FormatInt(r.CantidadProcesada, 10),
			strconv.FormatInt(r.TiempoOperacion, 10),
			r.Observaciones,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func writeFichasCSV(ctx context.Context, db *sqlite.DB, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"numero_ficha", "estado", "cliente", "pedido_id", "cantidad_total", "avances", "inspeccionada", "fecha_creacion"}
	if err := writer.Write(header); err != nil {
		return err
	}

	type row struct {
		NumeroFicha   string `bun:"numero_ficha"`
		Estado        string `bun:"estado"`
		Cliente       string `bun:"cliente"`
		PedidoID      int64  `bun:"pedido_id"`
		CantidadTotal int64  `bun:"cantidad_total"`
		Avances       int64  `bun:"avances"`
		Inspeccionada int64  `bun:"inspeccionada"`
		FechaCreacion string `bun:"fecha_creacion"`
	}

	rows := make([]row, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT ft.numero_ficha, ft.estado, c.nombre AS cliente, ft.pedido_id, ft.cantidad_total,
       (SELECT COUNT(*) FROM avances_por_area apa WHERE apa.ficha_tecnica_id = ft.id) AS avances,
       CASE WHEN ft.inspeccion_calidad IS NOT NULL AND ft.inspeccion_calidad != '' THEN 1 ELSE 0 END AS inspeccionada,
       strftime('%d/%m/%Y', ft.fecha_creacion) AS fecha_creacion
FROM fichas_tecnicas ft
JOIN pedidos p ON p.id = ft.pedido_id
JOIN clientes c ON c.id = p.cliente_id
ORDER BY ft.fecha_creacion ASC, ft.id ASC`).Scan(ctx, &rows)
	})
	if err != nil {
		return err
	}

	for _, r := range rows {
		inspeccionada := "no"
		if r.Inspeccionada == 1 {
			inspeccionada = "si"
		}
		record := []string{
			r.NumeroFicha,
			r.Estado,
			r.Cliente,
			strconv.FormatInt(r.PedidoID, 10),
			strconv.FormatInt(r.CantidadTotal, 10),
			strconv.FormatInt(r.Avances, 10),
			inspeccionada,
			r.FechaCreacion,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
