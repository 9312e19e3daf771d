package pedidos

import (
	"time"

	"fichaflow/models"
)

type createPedidoRequest struct {
	ClienteID        int64  `json:"clienteId"`
	Descripcion      string `json:"descripcion"`
	Cantidad         int64  `json:"cantidad"`
	FechaEntrega     string `json:"fechaEntrega"`
	Especificaciones string `json:"especificaciones"`
}

type updateEstadoRequest struct {
	Estado string `json:"estado"`
}

// PedidoView is the list representation with the joined client.
type PedidoView struct {
	ID               int64          `json:"id"`
	Descripcion      string         `json:"descripcion"`
	Cantidad         int64          `json:"cantidad"`
	FechaPedido      time.Time      `json:"fechaPedido"`
	FechaEntrega     time.Time      `json:"fechaEntrega"`
	Estado           string         `json:"estado"`
	Especificaciones string         `json:"especificaciones"`
	Cliente          models.Cliente `json:"cliente"`
}
