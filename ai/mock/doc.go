// Package mock provides test doubles for the ai service interfaces.
//
// Every mock allows behavior injection via function fields and records call
// counts for assertions. Constructors return concrete types so tests can set
// fields directly; defaults are deterministic and never touch the network.
// Readiness defaults to true and is toggled with the ReadyState field.
package mock
