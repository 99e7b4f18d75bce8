package gateway

import (
	"sync"

	"github.com/tracker-fw/cloud-gateway/pkg/transport"
)

// credentialCell hands a transport.Credential from the Provisioning
// Coordinator's callback goroutine to the owning state-machine goroutine.
// PrivateEvent is deliberately a flat, payload-less enum (SPEC_FULL §6), so
// the credential itself cannot ride the private channel; the machine reads
// the cell only after observing ProvisioningFinished.
type credentialCell struct {
	mu    sync.Mutex
	value transport.Credential
}

func (c *credentialCell) Set(cred transport.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = cred
}

func (c *credentialCell) Get() transport.Credential {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
