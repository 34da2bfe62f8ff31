package graph

import "github.com/google/uuid"

// NodeID identifies a node. IDs are name-based UUIDs derived from a path,
// so the same script always produces the same IDs.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// nodeNamespace scopes NodeIDs derived by NewNodeID.
var nodeNamespace = uuid.MustParse("6f1c2a8e-52d4-4b8f-9a57-3c0e2d7b91a4")

// NewNodeID derives the ID for the given path, e.g. "tube/rail".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(nodeNamespace, []byte(path)))
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
