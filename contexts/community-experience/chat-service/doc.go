// Package chatservice implements the channel message logs of Veilian.
//
// Layering:
// - domain: message errors and validation rules
// - application: gate-checked posting/listing plus the outbox relay worker
// - ports: stable boundaries for storage, the authorizer, and the event bus
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the community-experience context.
// - Authorization is delegated to the injected ChannelAuthorizer port; this
//   module never inspects roles or bans itself.
// - Real-time fan-out goes through the outbox, never directly from a request.
package chatservice
