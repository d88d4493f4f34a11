package entity

// Roles conocidos (la autorización por rol la hace la capa HTTP).
const (
	RoleSuperAdmin       = "super_admin"
	RoleCompanyAdmin     = "company_admin"
	RoleInventoryManager = "inventory_manager"
	RoleWarehouseManager = "warehouse_manager"
	RolePicker           = "picker"
	RolePacker           = "packer"
	RoleViewer           = "viewer"
)

// Actor es el usuario ya autenticado que invoca una operación del núcleo.
type Actor struct {
	UserID    int64
	CompanyID int64
	Role      string
}

// CrossTenant indica si el actor puede ver datos de todas las empresas.
func (a Actor) CrossTenant() bool {
	return a.Role == RoleSuperAdmin
}

// Owns indica si un recurso de la empresa companyID es visible para el actor.
func (a Actor) Owns(companyID int64) bool {
	return a.CrossTenant() || a.CompanyID == companyID
}
