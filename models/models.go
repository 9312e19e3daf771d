package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a plant worker able to authenticate against the API.
// Rol is one of the role constants in infrastructure/rbac; Area is the
// production area label for operator roles, empty otherwise.
type User struct {
	bun.BaseModel `bun:"table:usuarios,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Nombre       string    `bun:"nombre,notnull" json:"nombre"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Rol          string    `bun:"rol,notnull" json:"rol"`
	Area         string    `bun:"area" json:"area,omitempty"`
	Activo       bool      `bun:"activo,notnull,default:true" json:"activo"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"-"`
}

// Session is an issued bearer token row. ID is the opaque token itself.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:"id,pk"`
	UserID    int64     `bun:"user_id,notnull"`
	User      User      `bun:"rel:belongs-to,join:user_id=id"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Cliente is a customer placing pedidos.
type Cliente struct {
	bun.BaseModel `bun:"table:clientes,alias:c"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Nombre        string    `bun:"nombre,notnull" json:"nombre"`
	Email         string    `bun:"email,notnull" json:"email"`
	Telefono      string    `bun:"telefono" json:"telefono"`
	Direccion     string    `bun:"direccion" json:"direccion"`
	Activo        bool      `bun:"activo,notnull,default:true" json:"-"`
	FechaCreacion time.Time `bun:"fecha_creacion,notnull,default:current_timestamp" json:"fechaCreacion"`
}

// Pedido is a customer production order. Estado is one of
// pendiente, en_proceso, completado.
type Pedido struct {
	bun.BaseModel `bun:"table:pedidos,alias:p"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	ClienteID        int64     `bun:"cliente_id,notnull" json:"clienteId"`
	Cliente          *Cliente  `bun:"rel:belongs-to,join:cliente_id=id" json:"cliente,omitempty"`
	Descripcion      string    `bun:"descripcion,notnull" json:"descripcion"`
	Cantidad         int64     `bun:"cantidad,notnull" json:"cantidad"`
	FechaPedido      time.Time `bun:"fecha_pedido,notnull,default:current_timestamp" json:"fechaPedido"`
	FechaEntrega     time.Time `bun:"fecha_entrega,notnull" json:"fechaEntrega"`
	Estado           string    `bun:"estado,notnull" json:"estado"`
	Especificaciones string    `bun:"especificaciones" json:"especificaciones"`
}

// FichaTecnica is the work order driving one production run through the
// pipeline. Estado values are owned by package pipeline. InspeccionJSON
// holds the serialized one-time quality inspection, empty until inspected.
type FichaTecnica struct {
	bun.BaseModel `bun:"table:fichas_tecnicas,alias:ft"`

	ID               int64     `bun:"id,pk,autoincrement"`
	NumeroFicha      string    `bun:"numero_ficha,notnull"`
	PedidoID         int64     `bun:"pedido_id,notnull"`
	Pedido           *Pedido   `bun:"rel:belongs-to,join:pedido_id=id"`
	JefeProduccionID int64     `bun:"jefe_produccion_id,notnull"`
	Jefe             *User     `bun:"rel:belongs-to,join:jefe_produccion_id=id"`
	FechaCreacion    time.Time `bun:"fecha_creacion,notnull,default:current_timestamp"`
	Estado           string    `bun:"estado,notnull"`

	TipoEnvoltura string  `bun:"tipo_envoltura,notnull"`
	Material      string  `bun:"material,notnull"`
	Color         string  `bun:"color"`
	Acabado       string  `bun:"acabado"`
	Largo         float64 `bun:"largo,notnull"`
	Ancho         float64 `bun:"ancho,notnull"`
	Grosor        float64 `bun:"grosor,notnull"`
	CantidadTotal int64   `bun:"cantidad_total,notnull"`
	Observaciones string  `bun:"observaciones"`

	InspeccionJSON string `bun:"inspeccion_calidad"`
}

// AvanceArea is one area's completed work against a ficha. Rows are
// append-only; there is no update or delete path.
type AvanceArea struct {
	bun.BaseModel `bun:"table:avances_por_area,alias:apa"`

	ID                int64     `bun:"id,pk,autoincrement"`
	FichaTecnicaID    int64     `bun:"ficha_tecnica_id,notnull"`
	Area              string    `bun:"area,notnull"`
	OperarioID        int64     `bun:"operario_id,notnull"`
	Operario          *User     `bun:"rel:belongs-to,join:operario_id=id"`
	FechaInicio       time.Time `bun:"fecha_inicio,notnull"`
	FechaFin          time.Time `bun:"fecha_fin,notnull"`
	ParametrosJSON    string    `bun:"parametros,notnull"`
	CantidadProcesada int64     `bun:"cantidad_procesada,notnull"`
	TiempoOperacion   int64     `bun:"tiempo_operacion,notnull"`
	Observaciones     string    `bun:"observaciones"`
	Estado            string    `bun:"estado,notnull"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
