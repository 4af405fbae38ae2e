// Package accountservice implements signup, login, and profile management
// for Veilian members.
//
// Layering:
// - domain: account errors and validation rules
// - application: credential handling, profile updates, supreme bootstrap
// - ports: stable boundaries for the repository and password hashing
// - adapters: concrete HTTP, memory, postgres, crypto, and directory implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - adapters/directory is the sanctioned bridge exposing account state to
//   access-control; password hashes never cross it.
package accountservice
