// Package domain contains the core domain entities and value objects for wabridge.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Event]: A session lifecycle event (QR issued, ready, disconnected, ...)
//   - [Target]: A resolved conversation identifier for an outbound send
//   - [Media]: A file payload ready to hand to the session client
//   - [InboundMessage]: A text message received by the session
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
