// Package accesscontrol implements the channel authorization core of Veilian.
//
// Layering:
// - domain: role/ban entities, channel identity, the pure authorization gate
// - application: role & ban registry, session coordinator, realtime auth callback
// - ports: stable boundaries for the account directory, grants, idempotency
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - The module never owns account state; the directory is an injected port.
// - Authorization decisions are computed synchronously from in-memory state.
package accesscontrol
