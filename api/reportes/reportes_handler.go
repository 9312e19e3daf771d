// Package reportes serves CSV production reports for the production
// manager.
package reportes

import (
	"net/http"

	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/sqlite"
)

// AvancesCSVHandler exports every recorded advance across all fichas.
func AvancesCSVHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="avances.csv"`)
		if err := writeAvancesCSV(r.Context(), db, w); err != nil {
			web.Internal(w, "export avances failed", err)
			return
		}
	}
}

// FichasCSVHandler exports the ficha status summary.
func FichasCSVHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="fichas.csv"`)
		if err := writeFichasCSV(r.Context(), db, w); err != nil {
			web.Internal(w, "export fichas failed", err)
			return
		}
	}
}
