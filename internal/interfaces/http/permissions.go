package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
)

// RoleAdmin único rol que administra el registro de motivos.
const RoleAdmin = "admin"

// Permisos que exige la API de inventario.
const (
	PermInventoryRead    = "inventory.read"
	PermInventoryUpdate  = "inventory.update"
	PermReasonsManage    = "inventory.reasons.manage"
	permInventoryAll     = "inventory.*"
	permInventoryCreate  = "inventory.create"
	permInventoryAdjust  = "inventory.adjust"
	permInventoryWrite   = "inventory.write"
	permInventoryView    = "inventory.view"
	permInventarioVer    = "inventario.ver"
	permInventarioEditar = "inventario.editar"
)

// permissionAliases traduce permisos equivalentes (nombres heredados o más finos) al permiso canónico.
// Un permiso canónico se satisface con él mismo o con cualquiera de sus alias.
var permissionAliases = map[string][]string{
	PermInventoryRead:   {permInventoryView, permInventarioVer, PermInventoryUpdate, permInventoryAll},
	PermInventoryUpdate: {permInventoryCreate, permInventoryAdjust, permInventoryWrite, permInventarioEditar, permInventoryAll},
	PermReasonsManage:   {permInventoryAll},
}

// rolePermissions permisos que concede cada rol cuando el token no trae una lista explícita.
var rolePermissions = map[string][]string{
	RoleAdmin:   {permInventoryAll},
	"bodeguero": {PermInventoryRead, PermInventoryUpdate},
	"vendedor":  {PermInventoryRead},
	"auditor":   {PermInventoryRead},
}

// HasPermission resuelve si el rol o los permisos explícitos cubren el permiso pedido.
func HasPermission(role string, explicit []string, perm string) bool {
	granted := explicit
	if len(granted) == 0 {
		granted = rolePermissions[strings.ToLower(role)]
	}
	accepted := append([]string{perm}, permissionAliases[perm]...)
	for _, g := range granted {
		g = strings.ToLower(strings.TrimSpace(g))
		for _, a := range accepted {
			if g == a {
				return true
			}
		}
	}
	return false
}

// RequirePermission middleware que corta con 403 si el usuario no tiene perm.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}
		if !HasPermission(GetRole(c), GetPermissions(c), perm) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + perm,
			})
		}
		return c.Next()
	}
}
