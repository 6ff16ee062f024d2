package cache

// serverLookup is implemented by parents holding the servers a ServerConfigBuilder may replace
type serverLookup interface {
	lookupServer(address string, port int) (ServerConfig, bool)
}

// ServerConfigBuilder accumulates changes to one ServerConfig of a parent Builder.
type ServerConfigBuilder struct {
	parent   ParentBuilder[ServerConfig]
	server   ServerConfig
	original ServerConfig
}

func newServerConfigBuilder(parent ParentBuilder[ServerConfig], server ServerConfig) *ServerConfigBuilder {
	return &ServerConfigBuilder{
		parent:   parent,
		server:   server,
		original: server,
	}
}

// Address sets the server address with DefaultPort
func (b *ServerConfigBuilder) Address(address string) *ServerConfigBuilder {
	return b.AddressPort(address, DefaultPort)
}

func (b *ServerConfigBuilder) AddressPort(address string, port int) *ServerConfigBuilder {
	if port < 0 || (b.server.Address == address && b.server.Port == port) {
		return b
	}
	b.server.Address = address
	b.server.Port = port
	return b
}

func (b *ServerConfigBuilder) Weight(weight int) *ServerConfigBuilder {
	if weight < 0 || b.server.Weight == weight {
		return b
	}
	b.server.Weight = weight
	return b
}

// Confirm stamps LastModified if the server changed and merges it into the parent builder.
// It fails with ErrEmptyServerAddress when the address is empty.
func (b *ServerConfigBuilder) Confirm() (ServerConfig, error) {
	if b.server != b.original {
		previous := b.original.LastModified
		if lookup, ok := b.parent.(serverLookup); ok {
			if current, found := lookup.lookupServer(b.server.Address, b.server.Port); found && current.LastModified > previous {
				previous = current.LastModified
			}
		}
		b.server.LastModified = nextTimestamp(previous)
	}
	if b.parent != nil {
		if err := b.parent.ConfirmChild(b.server); err != nil {
			return b.server, err
		}
	}
	b.original = b.server
	return b.server, nil
}
