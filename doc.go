// Package graphsync drains a relational outbox table into a graph store.
//
// Typical flow:
//  1. An upstream producer writes rows to the outbox table alongside relational changes.
//  2. A Relay polls a Consumer, which locks and fetches eligible rows with SKIP LOCKED and commits at once.
//  3. The Dispatcher routes every event to the Pipeline registered for its aggregate type. The pipeline reloads
//     current relational truth for the aggregate and applies idempotent graph mutations.
//  4. Applied and skipped events are marked processed; failed events get their attempt counter incremented and
//     stay eligible until the attempts ceiling is reached.
//
// Delivery is at-least-once. For the SQL implementation of the outbox and the snapshot loaders see the sqlstore
// package; for the graph side see the graph and pipeline packages.
package graphsync
