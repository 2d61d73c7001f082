package models

// NetworkNode is a friend rendered into the network projection.
type NetworkNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NetworkLink is a relationship edge between two nodes of the projection.
// Edges whose endpoints are not both present in the node set are dropped.
type NetworkLink struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	TypeID   string `json:"typeId"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// NetworkGraph is the user's full friend network.
type NetworkGraph struct {
	Nodes []NetworkNode `json:"nodes"`
	Links []NetworkLink `json:"links"`
}
