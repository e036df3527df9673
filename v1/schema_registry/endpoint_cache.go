package schema_registry

import "sync"

// Process-wide cache of registry clients keyed by endpoint URL. Reader
// instances are cheap and recreated per batch; registry clients (and their
// id->schema caches) are not, so every reader pointed at the same endpoint
// shares one client. Entries are created lazily and live for the process
// lifetime: a schema identifier's binding is immutable, so there is nothing
// to invalidate or evict.
var (
	endpointClients      = make(map[string]*Client)
	endpointClientsMutex sync.Mutex
)

// ForEndpoint returns the shared client for the given endpoint, creating it
// on first use. The first configuration seen for an endpoint wins; later
// calls with different credentials or timeouts reuse the existing client.
func ForEndpoint(config Config) (*Client, error) {
	endpointClientsMutex.Lock()
	defer endpointClientsMutex.Unlock()

	if client, ok := endpointClients[config.URL]; ok {
		return client, nil
	}
	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	endpointClients[config.URL] = client
	return client, nil
}
