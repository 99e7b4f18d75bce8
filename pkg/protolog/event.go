package protolog

import "time"

// Event represents one gateway-core log event captured at any point in the
// connection lifecycle. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// CorrelationID groups events logged through the same Adapter between
	// Rotate calls (UUID unless the Adapter was given an explicit ID).
	CorrelationID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Type-specific payload (exactly one of these is set).
	StateChange  *StateChangeEvent  `cbor:"4,keyasint,omitempty"`
	BatchSummary *BatchSummaryEvent `cbor:"5,keyasint,omitempty"`
	Provisioning *ProvisioningEvent `cbor:"6,keyasint,omitempty"`
	Warning      *WarningEvent      `cbor:"7,keyasint,omitempty"`
	Error        *ErrorEvent        `cbor:"8,keyasint,omitempty"`
	Fatal        *FatalEvent        `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

// Recognized categories.
const (
	CategoryStateChange Category = iota
	CategoryBatchSummary
	CategoryProvisioning
	CategoryWarning
	CategoryError
	CategoryFatal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStateChange:
		return "STATE_CHANGE"
	case CategoryBatchSummary:
		return "BATCH_SUMMARY"
	case CategoryProvisioning:
		return "PROVISIONING"
	case CategoryWarning:
		return "WARNING"
	case CategoryError:
		return "ERROR"
	case CategoryFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent records one connection-state transition, with its full
// ancestor path and the event that triggered it (§4.1.1's audit trail).
type StateChangeEvent struct {
	// OldState is the previous leaf state name.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new leaf state name.
	NewState string `cbor:"2,keyasint"`

	// OldPath is the old state's full ancestor chain, root first.
	OldPath []string `cbor:"3,keyasint,omitempty"`

	// NewPath is the new state's full ancestor chain, root first.
	NewPath []string `cbor:"4,keyasint,omitempty"`

	// Trigger names the event that caused the transition.
	Trigger string `cbor:"5,keyasint,omitempty"`
}

// BatchSummaryEvent records one closed batch-drain session (§4.4.1).
type BatchSummaryEvent struct {
	SessionID    uint32 `cbor:"1,keyasint"`
	ItemsSent    int    `cbor:"2,keyasint"`
	ItemsDropped int    `cbor:"3,keyasint"`
	ItemErrors   int    `cbor:"4,keyasint"`
	DurationNS   int64  `cbor:"5,keyasint"`
}

// ProvisioningEvent records one provisioning coordinator outcome.
type ProvisioningEvent struct {
	Outcome string `cbor:"1,keyasint"`
	Result  string `cbor:"2,keyasint,omitempty"`
}

// WarningEvent carries a free-form, non-fatal diagnostic message.
type WarningEvent struct {
	Message string `cbor:"1,keyasint"`
}

// ErrorEvent carries a free-form error with optional context.
type ErrorEvent struct {
	Message string `cbor:"1,keyasint"`
	Context string `cbor:"2,keyasint,omitempty"`
}

// FatalEvent records a process-fatal signal raised by fatal.Reporter.
type FatalEvent struct {
	Kind    string `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint,omitempty"`
}
