package domain

import "errors"

const (
	PathLogin      = "/login"
	PathHome       = "/"
	PathPortal     = "/portal"
	PathTechnician = "/technician"
)

var ErrInvalidRouteTable = errors.New("invalid route table")

// RouteRule declares who may open a path. An empty Roles slice means any
// authenticated user.
type RouteRule struct {
	Path  string `json:"path"  yaml:"path"`
	View  string `json:"view"  yaml:"view"`
	Title string `json:"title" yaml:"title"`
	Nav   bool   `json:"nav"   yaml:"nav"`
	Roles []Role `json:"roles,omitempty" yaml:"roles"`
}

// Restricted reports whether the rule limits access to specific roles.
func (r RouteRule) Restricted() bool { return len(r.Roles) > 0 }

// Allows reports whether role may open the route.
func (r RouteRule) Allows(role Role) bool {
	if !r.Restricted() {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// FallbackPath is where a role lands when it opens a route it may not see.
func FallbackPath(role Role) string {
	switch role {
	case RoleCliente:
		return PathPortal
	case RoleMecanico:
		return PathTechnician
	default:
		return PathHome
	}
}

// Outcome is the kind of Decision the gate produced.
type Outcome string

const (
	OutcomeLoading  Outcome = "loading"
	OutcomeAllow    Outcome = "allow"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is the gate result for one navigation.
type Decision struct {
	Outcome Outcome
	Target  string // set only for OutcomeRedirect
}

// DefaultRoutes is the route tree of the console.
var DefaultRoutes = []RouteRule{
	{Path: PathHome, View: "dashboard", Title: "Panel", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista}},
	{Path: "/clients", View: "clients", Title: "Clientes", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista}},
	{Path: "/vehicles", View: "vehicles", Title: "Vehículos", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista}},
	{Path: "/appointments", View: "appointments", Title: "Citas", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista}},
	{Path: "/services", View: "services", Title: "Servicios", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista, RoleMecanico}},
	{Path: "/spare-parts", View: "spare_parts", Title: "Repuestos", Nav: true, Roles: []Role{RoleAdministrador, RoleRecepcionista, RoleMecanico}},
	{Path: "/users", View: "users", Title: "Usuarios", Nav: true, Roles: []Role{RoleAdministrador}},
	{Path: "/reports", View: "reports", Title: "Reportes", Nav: true, Roles: []Role{RoleAdministrador}},
	{Path: PathTechnician, View: "technician_queue", Title: "Mis trabajos", Nav: true, Roles: []Role{RoleMecanico}},
	{Path: PathPortal, View: "client_portal", Title: "Mi portal", Nav: true, Roles: []Role{RoleCliente}},
	{Path: "/portal/vehicles", View: "client_vehicles", Title: "Mis vehículos", Nav: true, Roles: []Role{RoleCliente}},
	{Path: "/portal/appointments", View: "client_appointments", Title: "Mis citas", Nav: true, Roles: []Role{RoleCliente}},
	{Path: "/profile", View: "profile", Title: "Perfil"},
}
