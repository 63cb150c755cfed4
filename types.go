package spaceport

// Event is the registry mutation notice published to subscribers. Channel
// names equal the entity kind ("account", "space", "moment", "comment",
// "like").
type Event struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	ID     uint64 `json:"id"`
	Actor  string `json:"actor,omitempty"`
	At     int64  `json:"at"`
}

const (
	EventActionCreated  = "created"
	EventActionRemoved  = "removed"
	EventActionRented   = "rented"
	EventActionReturned = "returned"
)

// Endpoint describes one operation advertised by the well-known descriptor.
type Endpoint struct {
	Template string    `json:"template"`
	Method   string    `json:"method"`
	Query    *[]string `json:"query,omitempty"`
}

// WellKnownSpaceport is the node descriptor served at /.well-known/spaceport.
type WellKnownSpaceport struct {
	Version   string              `json:"version"`
	FQDN      string              `json:"fqdn"`
	Address   string              `json:"address"`
	Endpoints map[string]Endpoint `json:"endpoints"`
}
