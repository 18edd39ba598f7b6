package businessflow

import (
	"slices"

	"github.com/amirphl/radio-contracts/models"
)

// Capability names an operation guarded by the role gate
type Capability string

const (
	CapAuthRegister Capability = "auth.register"

	CapUsersList          Capability = "users.list"
	CapUsersGet           Capability = "users.get"
	CapUsersLocutors      Capability = "users.locutors"
	CapUsersCreate        Capability = "users.create"
	CapUsersUpdate        Capability = "users.update"
	CapUsersDelete        Capability = "users.delete"
	CapUsersResetPassword Capability = "users.reset_password"

	CapClientsList   Capability = "clients.list"
	CapClientsGet    Capability = "clients.get"
	CapClientsCreate Capability = "clients.create"
	CapClientsUpdate Capability = "clients.update"
	CapClientsDelete Capability = "clients.delete"
	CapClientsStats  Capability = "clients.stats"

	CapContractsList     Capability = "contracts.list"
	CapContractsGet      Capability = "contracts.get"
	CapContractsStats    Capability = "contracts.stats"
	CapContractsCreate   Capability = "contracts.create"
	CapContractsUpdate   Capability = "contracts.update"
	CapContractsApprove  Capability = "contracts.approve"
	CapContractsComplete Capability = "contracts.complete"
	CapContractsCancel   Capability = "contracts.cancel"
	CapContractsDelete   Capability = "contracts.delete"
	CapContractsExport   Capability = "contracts.export"

	CapProgramsList Capability = "programs.list"
	CapAdTypesList  Capability = "ad_types.list"
)

// capabilityRule lists the roles allowed to run an operation and whether
// announcer reads of contracts are narrowed to their own programs
type capabilityRule struct {
	roles  []models.UserRole
	scoped bool
}

var (
	adminOnly      = []models.UserRole{models.RoleAdmin}
	staffRoles     = []models.UserRole{models.RoleAdmin, models.RoleManager}
	everyoneSigned = []models.UserRole{models.RoleAdmin, models.RoleManager, models.RoleAnnouncer}
)

var capabilityTable = map[Capability]capabilityRule{
	CapAuthRegister: {roles: adminOnly},

	CapUsersList:          {roles: staffRoles},
	CapUsersGet:           {roles: staffRoles},
	CapUsersLocutors:      {roles: staffRoles},
	CapUsersCreate:        {roles: adminOnly},
	CapUsersUpdate:        {roles: adminOnly},
	CapUsersDelete:        {roles: adminOnly},
	CapUsersResetPassword: {roles: adminOnly},

	CapClientsList:   {roles: everyoneSigned},
	CapClientsGet:    {roles: everyoneSigned, scoped: true},
	CapClientsCreate: {roles: staffRoles},
	CapClientsUpdate: {roles: staffRoles},
	CapClientsDelete: {roles: adminOnly},
	CapClientsStats:  {roles: staffRoles},

	CapContractsList:     {roles: everyoneSigned, scoped: true},
	CapContractsGet:      {roles: everyoneSigned, scoped: true},
	CapContractsStats:    {roles: everyoneSigned, scoped: true},
	CapContractsCreate:   {roles: staffRoles},
	CapContractsUpdate:   {roles: staffRoles},
	CapContractsApprove:  {roles: staffRoles},
	CapContractsComplete: {roles: staffRoles},
	CapContractsCancel:   {roles: staffRoles},
	CapContractsDelete:   {roles: adminOnly},
	CapContractsExport:   {roles: staffRoles},

	CapProgramsList: {roles: everyoneSigned},
	CapAdTypesList:  {roles: everyoneSigned},
}

// Authorize checks that the identity holds one of the allowed roles
func Authorize(identity *Identity, allowed ...models.UserRole) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !slices.Contains(allowed, identity.Role) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeCapability checks the identity against the capability table
func AuthorizeCapability(identity *Identity, op Capability) error {
	rule, ok := capabilityTable[op]
	if !ok {
		return ErrCapabilityNotSupported
	}
	return Authorize(identity, rule.roles...)
}

// AllowedRoles returns the roles granted an operation
func AllowedRoles(op Capability) []models.UserRole {
	return slices.Clone(capabilityTable[op].roles)
}

// VisibleLocutor returns the locutor id contract reads must be narrowed to, or nil for unrestricted access
func VisibleLocutor(identity *Identity, op Capability) *uint {
	if identity == nil || identity.Role != models.RoleAnnouncer {
		return nil
	}
	if !capabilityTable[op].scoped {
		return nil
	}
	id := identity.ID
	return &id
}
