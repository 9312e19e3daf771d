package fichas

import (
	"time"

	"fichaflow/pipeline"
)

type dimensiones struct {
	Largo  float64 `json:"largo"`
	Ancho  float64 `json:"ancho"`
	Grosor float64 `json:"grosor"`
}

type especificaciones struct {
	TipoEnvoltura string      `json:"tipoEnvoltura"`
	Material      string      `json:"material"`
	Color         string      `json:"color"`
	Acabado       string      `json:"acabado"`
	Dimensiones   dimensiones `json:"dimensiones"`
	CantidadTotal int64       `json:"cantidadTotal"`
	Observaciones string      `json:"observaciones"`
}

type createFichaRequest struct {
	PedidoID         int64            `json:"pedidoId"`
	Especificaciones especificaciones `json:"especificaciones"`
}

type avanceRequest struct {
	ParametrosProduccion pipeline.Parametros `json:"parametrosProduccion"`
	CantidadProcesada    int64               `json:"cantidadProcesada"`
	TiempoOperacion      int64               `json:"tiempoOperacion"`
	Observaciones        string              `json:"observaciones"`
	DerivarCalidad       *bool               `json:"derivarCalidad"`
}

type inspeccionRequest struct {
	Resultado           string   `json:"resultado"`
	Observaciones       string   `json:"observaciones"`
	DefectosEncontrados []string `json:"defectosEncontrados"`
	AreaObservada       string   `json:"areaObservada"`
}

// Inspeccion is the one-time quality verdict stored on the ficha.
type Inspeccion struct {
	InspectorID         int64     `json:"inspectorId"`
	InspectorNombre     string    `json:"inspectorNombre"`
	FechaInspeccion     time.Time `json:"fechaInspeccion"`
	Resultado           string    `json:"resultado"`
	Observaciones       string    `json:"observaciones"`
	DefectosEncontrados []string  `json:"defectosEncontrados"`
	AreaObservada       string    `json:"areaObservada,omitempty"`
}

type clienteView struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type pedidoView struct {
	ID               int64       `json:"id"`
	Descripcion      string      `json:"descripcion"`
	Cantidad         int64       `json:"cantidad"`
	FechaEntrega     time.Time   `json:"fechaEntrega"`
	Especificaciones string      `json:"especificaciones"`
	Cliente          clienteView `json:"cliente"`
}

// FichaView is the list/detail representation with joined pedido, cliente
// and creating jefe.
type FichaView struct {
	ID               int64            `json:"id"`
	NumeroFicha      string           `json:"numeroFicha"`
	FechaCreacion    time.Time        `json:"fechaCreacion"`
	Estado           string           `json:"estado"`
	JefeProduccionID int64            `json:"jefeProduccionId"`
	JefeNombre       string           `json:"jefeNombre"`
	Especificaciones especificaciones `json:"especificaciones"`
	Pedido           pedidoView       `json:"pedido"`
	Inspeccion       *Inspeccion      `json:"inspeccionCalidad,omitempty"`
}

// AvanceView is the per-area advance representation with the operator name.
type AvanceView struct {
	ID                int64               `json:"id"`
	Area              string              `json:"area"`
	Operario          string              `json:"operario"`
	FechaInicio       time.Time           `json:"fechaInicio"`
	FechaFin          time.Time           `json:"fechaFin"`
	Parametros        pipeline.Parametros `json:"parametros"`
	CantidadProcesada int64               `json:"cantidadProcesada"`
	TiempoOperacion   int64               `json:"tiempoOperacion"`
	Observaciones     string              `json:"observaciones"`
	Estado            string              `json:"estado"`
}
