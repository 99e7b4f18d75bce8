package messages

// CloudIn is the sum type of inbound CLOUD-channel requests the core consumes.
type CloudIn interface {
	cloudIn()
}

// SendJsonPayload asks the core to forward an application JSON payload.
type SendJsonPayload struct {
	Body []byte
}

// ShadowPollDelta asks the core to fetch the delta-only device shadow.
type ShadowPollDelta struct{}

// ShadowPollDesired asks the core to fetch the full desired device shadow.
type ShadowPollDesired struct{}

// ShadowReportReported asks the core to report current state to the shadow.
type ShadowReportReported struct {
	Body []byte
}

// ProvisioningRequest asks the core to re-run the credential refresh
// sub-protocol even though the cloud session is currently Ready.
type ProvisioningRequest struct{}

func (SendJsonPayload) cloudIn()        {}
func (ShadowPollDelta) cloudIn()        {}
func (ShadowPollDesired) cloudIn()      {}
func (ShadowReportReported) cloudIn()   {}
func (ProvisioningRequest) cloudIn()    {}

// CloudOut is the sum type of outbound CLOUD-channel status/response messages
// the core publishes.
type CloudOut interface {
	cloudOut()
}

// StatusReason names the event that triggered a Connected/Disconnected
// status publish, for the structured-logging audit trail (SPEC_FULL §4.1.1).
type StatusReason string

// Connected is published when the cloud session becomes able to send
// (Connected/Ready entry).
type Connected struct {
	Reason StatusReason
	Path   string
}

// Disconnected is published whenever the cloud session stops being able to
// send (any exit from Connected, or Connected/Paused entry).
type Disconnected struct {
	Reason StatusReason
	Path   string
}

// ShadowResponseDelta carries a delta-only shadow response.
type ShadowResponseDelta struct{ Body []byte }

// ShadowResponseDesired carries a full desired-shadow response.
type ShadowResponseDesired struct{ Body []byte }

// ShadowResponseEmptyDelta indicates no delta was pending.
type ShadowResponseEmptyDelta struct{}

// ShadowResponseEmptyDesired indicates no desired document was pending.
type ShadowResponseEmptyDesired struct{}

func (Connected) cloudOut()                   {}
func (Disconnected) cloudOut()                {}
func (ShadowResponseDelta) cloudOut()         {}
func (ShadowResponseDesired) cloudOut()       {}
func (ShadowResponseEmptyDelta) cloudOut()    {}
func (ShadowResponseEmptyDesired) cloudOut()  {}
