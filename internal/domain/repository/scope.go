package repository

// TenantScope restringe una consulta a una empresa, o a todas si AllCompanies es verdadero.
type TenantScope struct {
	CompanyID    int64
	AllCompanies bool
}

// CompanyScope construye un alcance de una sola empresa.
func CompanyScope(companyID int64) TenantScope {
	return TenantScope{CompanyID: companyID}
}
