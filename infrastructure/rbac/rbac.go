// Package rbac declares the plant roles and validates a role's access to
// a route. Route resources are registered once at startup, alongside the
// route registrations themselves.
package rbac

import (
	"strings"

	"fichaflow/infrastructure/cache"
)

const (
	RoleJefeProduccion    = "jefe_produccion"
	RoleOperarioExtrusion = "operario_extrusion"
	RoleOperarioCorte     = "operario_corte"
	RoleOperarioLaminado  = "operario_laminado"
	RoleOperarioSellado   = "operario_sellado"
	RoleOperarioImpresion = "operario_impresion"
	RoleControlCalidad    = "control_calidad"
)

// AllRoles lists every role the system knows.
func AllRoles() []string {
	return []string{
		RoleJefeProduccion,
		RoleOperarioExtrusion,
		RoleOperarioCorte,
		RoleOperarioLaminado,
		RoleOperarioSellado,
		RoleOperarioImpresion,
		RoleControlCalidad,
	}
}

// ValidRole reports whether role is one of the declared plant roles.
func ValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// Rbac stores route resources in cache.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// AddAll registers the same resource for every plant role.
func (r *Rbac) AddAll(code, method, path string) {
	for _, role := range AllRoles() {
		r.Add(role, code, method, path)
	}
}

// Allowed reports whether the role may invoke method+urlPath.
func (r *Rbac) Allowed(role, urlPath, method string) bool {
	if r == nil || r.cache == nil {
		return false
	}
	return ValidateResourceAccess(r.cache.GetRoleResources(role), urlPath, method)
}

func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method != method {
			continue
		}
		if matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	pattern = strings.Trim(pattern, "/")
	path = strings.Trim(path, "/")

	patternSeg := strings.Split(pattern, "/")
	pathSeg := strings.Split(path, "/")

	// Segment wildcard matching: /a/*/c and /a/*/*/d.
	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] == "*" {
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	// Prefix wildcard matching: /a/b/* should match any deeper suffix.
	if len(patternSeg) > 0 && patternSeg[len(patternSeg)-1] == "*" {
		prefix := "/" + strings.Join(patternSeg[:len(patternSeg)-1], "/")
		return strings.HasPrefix("/"+path, prefix+"/") || "/"+path == prefix
	}

	return false
}
