package clientes

import (
	"encoding/json"
	"net/http"
	"strings"

	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/sqlite"
)

// ListClientesHandler returns active clients ordered by name.
func ListClientesHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := listClientes(r.Context(), db)
		if err != nil {
			web.Internal(w, "list clientes failed", err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// CreateClienteHandler registers a new client.
func CreateClienteHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createClienteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		req.Nombre = strings.TrimSpace(req.Nombre)
		req.Email = strings.TrimSpace(req.Email)
		if req.Nombre == "" || req.Email == "" {
			web.Error(w, http.StatusBadRequest, "nombre y email son requeridos")
			return
		}

		id, err := createCliente(r.Context(), db, req)
		if err != nil {
			web.Internal(w, "create cliente failed", err)
			return
		}
		web.JSON(w, http.StatusCreated, map[string]any{
			"message":   "Cliente creado exitosamente",
			"clienteId": id,
		})
	}
}
