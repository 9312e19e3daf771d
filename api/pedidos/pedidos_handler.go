package pedidos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fichaflow/api/shared/appctx"
	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/audit"
	"fichaflow/infrastructure/sqlite"
)

var sqlErrClienteNotFound = errors.New("cliente no encontrado")

// ListPedidosHandler returns all pedidos with their client, newest first.
func ListPedidosHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := listPedidos(r.Context(), db)
		if err != nil {
			web.Internal(w, "list pedidos failed", err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// CreatePedidoHandler registers a new pedido in estado pendiente.
func CreatePedidoHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPedidoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		req.Descripcion = strings.TrimSpace(req.Descripcion)
		if req.ClienteID <= 0 || req.Descripcion == "" || req.Cantidad <= 0 {
			web.Error(w, http.StatusBadRequest, "clienteId, descripcion y cantidad son requeridos")
			return
		}
		fechaEntrega, err := parseFecha(req.FechaEntrega)
		if err != nil {
			web.Error(w, http.StatusBadRequest, "fechaEntrega invalida")
			return
		}

		session, _ := appctx.GetSessionFromContext(r.Context())
		id, err := createPedido(r.Context(), db, auditSvc, session.UserID, req, fechaEntrega)
		if err != nil {
			if errors.Is(err, sqlErrClienteNotFound) {
				web.Error(w, http.StatusNotFound, "cliente no encontrado")
				return
			}
			web.Internal(w, "create pedido failed", err)
			return
		}
		web.JSON(w, http.StatusCreated, map[string]any{
			"message":  "Pedido creado exitosamente",
			"pedidoId": id,
		})
	}
}

// UpdateEstadoHandler sets a pedido's estado directly. Automatic
// transitions (ficha creation, quality rejection) happen elsewhere; this
// endpoint covers manual management, completion included.
func UpdateEstadoHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			web.Error(w, http.StatusBadRequest, "id de pedido invalido")
			return
		}

		var req updateEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		if !ValidEstado(req.Estado) {
			web.Error(w, http.StatusBadRequest, "estado de pedido invalido")
			return
		}

		session, _ := appctx.GetSessionFromContext(r.Context())
		if err := updatePedidoEstado(r.Context(), db, auditSvc, session.UserID, id, req.Estado); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				web.Error(w, http.StatusNotFound, "pedido no encontrado")
				return
			}
			web.Internal(w, "update pedido estado failed", err)
			return
		}
		web.JSON(w, http.StatusOK, map[string]string{"message": "Estado del pedido actualizado"})
	}
}

func parseFecha(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
