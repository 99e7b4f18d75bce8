// Package messages defines the concrete message variants carried on each of
// the gateway core's bus channels (NETWORK, CLOUD in/out, STORAGE control
// in/out, STORAGE data, LOCATION out) and the internal PRIVATE event set.
//
// Each channel's message set is modeled as a Go sum type: an interface with
// an unexported marker method, implemented by one struct per variant. This
// mirrors how the hierarchical connection state is modeled (a closed set of
// tagged alternatives) without resorting to reflection or a giant union
// struct.
package messages
