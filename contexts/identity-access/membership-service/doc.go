// Package membership implements the tenant membership registry and the
// authorization engine for Grant STW.
//
// Layering:
// - domain: roles, memberships, organizations, the pure decision function
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence and the external encoder
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application.
// - Sibling contexts consume authorization through AccessGate only.
package membership
