package messages

import "time"

// NetworkEvent is the sum type of messages carried on the NETWORK channel.
type NetworkEvent interface {
	networkEvent()
}

// NetworkConnected indicates the cellular radio has an IP-layer connection.
type NetworkConnected struct{}

// NetworkDisconnected indicates the cellular radio has lost its connection.
type NetworkDisconnected struct{}

// NetworkConnectRequest asks the radio collaborator to bring the link up.
// Published by the core (e.g. the Provisioning Coordinator); consumed by the
// radio/LTE stack, which is out of scope for this module.
type NetworkConnectRequest struct{}

// NetworkDisconnectRequest asks the radio collaborator to take the link down.
type NetworkDisconnectRequest struct{}

// NetworkQualitySampleResponse carries a requested signal-quality sample.
type NetworkQualitySampleResponse struct {
	RSRP            int32
	EnergyEstimateMJ int64
	Timestamp       time.Time
}

func (NetworkConnected) networkEvent()             {}
func (NetworkDisconnected) networkEvent()           {}
func (NetworkConnectRequest) networkEvent()         {}
func (NetworkDisconnectRequest) networkEvent()      {}
func (NetworkQualitySampleResponse) networkEvent()  {}
