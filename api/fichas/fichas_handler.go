package fichas

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
	"fichaflow/pipeline"
)

// ListFichasHandler returns every ficha with its pedido, cliente and jefe.
func ListFichasHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := listFichas(r.Context(), db)
		if err != nil {
			web.Internal(w, "list fichas failed", err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// CreateFichaHandler opens a work order against a pedido and moves the
// pedido into en_proceso.
func CreateFichaHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFichaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		if msg := validateEspecificaciones(req); msg != "" {
			web.Error(w, http.StatusBadRequest, msg)
			return
		}

		session, _ := appctx.GetSessionFromContext(r.Context())
		ficha, err := createFicha(r.Context(), db, auditSvc, session.UserID, req, time.Now())
		if err != nil {
			if errors.Is(err, ErrPedidoNotFound) {
				web.Error(w, http.StatusNotFound, "pedido no encontrado")
				return
			}
			web.Internal(w, "create ficha failed", err)
			return
		}
		web.JSON(w, http.StatusCreated, map[string]any{
			"message":     "Ficha técnica creada exitosamente",
			"fichaId":     ficha.ID,
			"numeroFicha": ficha.NumeroFicha,
		})
	}
}

func validateEspecificaciones(req createFichaRequest) string {
	if req.PedidoID <= 0 {
		return "pedidoId es requerido"
	}
	e := req.Especificaciones
	if strings.TrimSpace(e.TipoEnvoltura) == "" || strings.TrimSpace(e.Material) == "" {
		return "tipoEnvoltura y material son requeridos"
	}
	if e.Dimensiones.Largo <= 0 || e.Dimensiones.Ancho <= 0 || e.Dimensiones.Grosor <= 0 {
		return "dimensiones deben ser mayores que cero"
	}
	if e.CantidadTotal <= 0 {
		return "cantidadTotal debe ser mayor que cero"
	}
	return ""
}

// RecordAvanceHandler appends an area advance and moves the ficha along
// the pipeline. The route is registered per area, so RBAC has already
// matched the caller's role to the area.
func RecordAvanceHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fichaID, err := parseFichaID(r)
		if err != nil {
			web.Error(w, http.StatusBadRequest, "id de ficha invalido")
			return
		}
		area := chi.URLParam(r, "area")
		if !pipeline.ValidArea(area) {
			web.Error(w, http.StatusBadRequest, "area de produccion invalida")
			return
		}

		var req avanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		if req.CantidadProcesada < 0 || req.TiempoOperacion < 0 {
			web.Error(w, http.StatusBadRequest, "cantidadProcesada y tiempoOperacion no pueden ser negativos")
			return
		}
		if req.ParametrosProduccion == nil {
			req.ParametrosProduccion = pipeline.Parametros{}
		}
		if err := pipeline.ValidateParametros(area, req.ParametrosProduccion); err != nil {
			web.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		session, _ := appctx.GetSessionFromContext(r.Context())
		nextState, err := registrarAvance(r.Context(), db, auditSvc, session.UserID, fichaID, area, req, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				web.Error(w, http.StatusNotFound, "ficha no encontrada")
			case errors.Is(err, ErrAreaMismatch):
				web.Error(w, http.StatusConflict, err.Error())
			case errors.Is(err, pipeline.ErrDerivarCalidadRequired):
				web.Error(w, http.StatusBadRequest, err.Error())
			default:
				web.Internal(w, "registrar avance failed", err)
			}
			return
		}
		web.JSON(w, http.StatusOK, map[string]string{
			"message":   "Avance registrado exitosamente",
			"nextState": nextState,
		})
	}
}

// RecordInspeccionHandler records the one-time quality verdict.
func RecordInspeccionHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fichaID, err := parseFichaID(r)
		if err != nil {
			web.Error(w, http.StatusBadRequest, "id de ficha invalido")
			return
		}

		var req inspeccionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		if !pipeline.ValidResultado(req.Resultado) {
			web.Error(w, http.StatusBadRequest, "resultado de inspeccion invalido")
			return
		}
		if req.Resultado != pipeline.ResultadoAprobado && strings.TrimSpace(req.AreaObservada) == "" {
			web.Error(w, http.StatusBadRequest, "areaObservada es requerida cuando el resultado no es aprobado")
			return
		}

		session, _ := appctx.GetSessionFromContext(r.Context())
		estado, err := registrarInspeccion(r.Context(), db, auditSvc, session.User, fichaID, req, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				web.Error(w, http.StatusNotFound, "ficha no encontrada")
			case errors.Is(err, ErrAlreadyInspected):
				web.Error(w, http.StatusConflict, ErrAlreadyInspected.Error())
			default:
				web.Internal(w, "registrar inspeccion failed", err)
			}
			return
		}
		web.JSON(w, http.StatusOK, map[string]string{
			"message":   "Inspección de calidad registrada exitosamente",
			"resultado": req.Resultado,
			"estado":    estado,
		})
	}
}

// ListAvancesHandler returns a ficha's advances, oldest first.
func ListAvancesHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fichaID, err := parseFichaID(r)
		if err != nil {
			web.Error(w, http.StatusBadRequest, "id de ficha invalido")
			return
		}
		out, err := listAvances(r.Context(), db, fichaID)
		if err != nil {
			web.Internal(w, "list avances failed", err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

func parseFichaID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid ficha id")
	}
	return id, nil
}
