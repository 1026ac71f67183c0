// Package messaging publishes and consumes broker messages behind a small
// interface. NATS is the production backend; the in-process Memory broker
// serves tests and single-node development.
package messaging
