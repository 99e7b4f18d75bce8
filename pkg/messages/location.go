package messages

// LocationOut is the sum type of outbound LOCATION-channel messages.
type LocationOut interface {
	locationOut()
}

// SearchCancel asks the positioning collaborator to cancel any in-flight
// location search. Emitted on entering Connecting/Attempt/Provisioning,
// since the credential-refresh dialogue cycles the radio and an in-progress
// search would otherwise be stranded.
type SearchCancel struct{}

func (SearchCancel) locationOut() {}
