// Package bus provides a small in-process typed publish/subscribe channel,
// one instance per logical message topic (NETWORK, CLOUD, STORAGE control,
// STORAGE data, LOCATION).
//
// # Delivery
//
// Each subscriber gets its own buffered Go channel. Publish fans a message
// out to every subscriber; a slow subscriber that fails to drain its channel
// within the configured publish timeout causes Publish to return
// ErrPublishTimeout. Callers that treat bus delivery as a liveness
// requirement (the gateway core does) must raise a process-fatal signal on
// that error, per the surrounding package's error taxonomy.
//
// # Ordering
//
// Messages are delivered to each subscriber in the order Publish was called
// (FIFO per source), matching the bus property the core's concurrency model
// relies on.
package bus
