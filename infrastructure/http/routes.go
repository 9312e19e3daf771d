package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fichaflow/api/clientes"
	"fichaflow/api/fichas"
	"fichaflow/api/pedidos"
	"fichaflow/api/reportes"
	"fichaflow/infrastructure/rbac"
	"fichaflow/pipeline"
)

// RegisterAPIRoutes registers the authenticated API surface together with
// the per-role route resources the auth middleware validates against.
func (s *Server) RegisterAPIRoutes(r chi.Router) {
	s.registerClienteRoutes(r)
	s.registerPedidoRoutes(r)
	s.registerFichaRoutes(r)
	s.registerReporteRoutes(r)
}

func (s *Server) registerClienteRoutes(r chi.Router) {
	s.Rbac.AddAll("CLIENTES_LIST", http.MethodGet, "/api/clientes")
	r.Get("/api/clientes", clientes.ListClientesHandler(s.DB))

	s.Rbac.AddAll("CLIENTES_CREATE", http.MethodPost, "/api/clientes")
	r.Post("/api/clientes", clientes.CreateClienteHandler(s.DB))
}

func (s *Server) registerPedidoRoutes(r chi.Router) {
	s.Rbac.AddAll("PEDIDOS_LIST", http.MethodGet, "/api/pedidos")
	r.Get("/api/pedidos", pedidos.ListPedidosHandler(s.DB))

	s.Rbac.Add(rbac.RoleJefeProduccion, "PEDIDOS_CREATE", http.MethodPost, "/api/pedidos")
	r.Post("/api/pedidos", pedidos.CreatePedidoHandler(s.DB, s.Audit))

	s.Rbac.Add(rbac.RoleJefeProduccion, "PEDIDOS_ESTADO_EDIT", http.MethodPut, "/api/pedidos/*/estado")
	r.Put("/api/pedidos/{id}/estado", pedidos.UpdateEstadoHandler(s.DB, s.Audit))
}

func (s *Server) registerFichaRoutes(r chi.Router) {
	s.Rbac.AddAll("FICHAS_LIST", http.MethodGet, "/api/fichas")
	r.Get("/api/fichas", fichas.ListFichasHandler(s.DB))

	s.Rbac.Add(rbac.RoleJefeProduccion, "FICHAS_CREATE", http.MethodPost, "/api/fichas")
	r.Post("/api/fichas", fichas.CreateFichaHandler(s.DB, s.Audit))

	// Each area's advance route is open to that area's operator and the
	// production manager; the area→role map lives in package pipeline.
	for _, area := range pipeline.Areas() {
		role, err := pipeline.RoleForArea(area)
		if err != nil {
			continue
		}
		pattern := "/api/fichas/*/avance/" + area
		code := "FICHAS_AVANCE_" + area
		s.Rbac.Add(role, code, http.MethodPut, pattern)
		s.Rbac.Add(rbac.RoleJefeProduccion, code, http.MethodPut, pattern)
	}
	r.Put("/api/fichas/{id}/avance/{area}", fichas.RecordAvanceHandler(s.DB, s.Audit))

	s.Rbac.Add(rbac.RoleControlCalidad, "FICHAS_INSPECCION", http.MethodPost, "/api/fichas/*/inspeccion-calidad")
	s.Rbac.Add(rbac.RoleJefeProduccion, "FICHAS_INSPECCION", http.MethodPost, "/api/fichas/*/inspeccion-calidad")
	r.Post("/api/fichas/{id}/inspeccion-calidad", fichas.RecordInspeccionHandler(s.DB, s.Audit))

	s.Rbac.AddAll("FICHAS_AVANCES_LIST", http.MethodGet, "/api/fichas/*/avances")
	r.Get("/api/fichas/{id}/avances", fichas.ListAvancesHandler(s.DB))

	s.Rbac.AddAll("FICHAS_HOJA_PDF", http.MethodGet, "/api/fichas/*/hoja.pdf")
	r.Get("/api/fichas/{id}/hoja.pdf", fichas.HojaPDFHandler(s.DB))
}

func (s *Server) registerReporteRoutes(r chi.Router) {
	s.Rbac.Add(rbac.RoleJefeProduccion, "REPORTES_AVANCES_CSV", http.MethodGet, "/api/reportes/avances.csv")
	r.Get("/api/reportes/avances.csv", reportes.AvancesCSVHandler(s.DB))

	s.Rbac.Add(rbac.RoleJefeProduccion, "REPORTES_FICHAS_CSV", http.MethodGet, "/api/reportes/fichas.csv")
	r.Get("/api/reportes/fichas.csv", reportes.FichasCSVHandler(s.DB))
}
