package http

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Grupos de roles por operación.
var (
	// ReadRoles: feed, stock y listado de ajustes.
	ReadRoles = []string{
		entity.RoleSuperAdmin, entity.RoleCompanyAdmin, entity.RoleInventoryManager, entity.RoleWarehouseManager,
		entity.RolePicker, entity.RolePacker, entity.RoleViewer,
	}
	// CatalogWriteRoles: alta de productos y bodegas.
	CatalogWriteRoles = []string{entity.RoleSuperAdmin, entity.RoleCompanyAdmin, entity.RoleInventoryManager}
	// ScanRoles: ajustes rápidos desde el escáner.
	ScanRoles = []string{
		entity.RoleSuperAdmin, entity.RoleCompanyAdmin, entity.RoleInventoryManager, entity.RoleWarehouseManager,
		entity.RolePicker, entity.RolePacker,
	}
	// ManagementRoles: gestión de bodega y producción.
	ManagementRoles = []string{
		entity.RoleSuperAdmin, entity.RoleCompanyAdmin, entity.RoleWarehouseManager, entity.RoleInventoryManager,
	}
	MovementReadRoles = append(append([]string{}, ManagementRoles...), entity.RoleViewer)
	// FloorRoles: producción más alistadores y empacadores.
	FloorRoles = append(append([]string{}, ManagementRoles...), entity.RolePicker, entity.RolePacker)
)
