// Package socialservice implements the shared video feed of Veilian.
//
// Layering:
// - domain: post errors and validation rules
// - application: ban-gated posting/listing with broker fan-out
// - ports: stable boundaries for storage, the authorizer, and the event bus
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the community-experience context.
// - The whole surface rides the shared social channel; ban gating is
//   delegated to the injected ChannelAuthorizer port.
package socialservice
