package protocol

// Wire types for the unit's /dsiot/multireq endpoint. A frame is a JSON
// envelope of requests (or responses) whose payload is a tree of named
// nodes; leaves carry little-endian hex strings. Everything
// firmware-specific lives in this package.

const (
	// Endpoint is the unit's single control endpoint, relative to the host.
	Endpoint = "/dsiot/multireq"

	// statusTarget addresses the unit's full control/state group.
	statusTarget = "/dsiot/edge/adr_0100.dgc_status"

	opRead  = 2
	opWrite = 3
)

// Node is one element of the frame tree: a named group (with children) or a
// leaf (with a hex value).
type Node struct {
	Name     string `json:"pn"`
	Value    string `json:"pv,omitempty"`
	Children []Node `json:"pch,omitempty"`
}

// child returns the direct child with the given name.
func (n *Node) child(name string) (*Node, bool) {
	for i := range n.Children {
		if n.Children[i].Name == name {
			return &n.Children[i], true
		}
	}
	return nil, false
}

type request struct {
	Op int    `json:"op"`
	To string `json:"to"`
	Pc *Node  `json:"pc,omitempty"`
}

type requestEnvelope struct {
	Requests []request `json:"requests"`
}

type response struct {
	From string `json:"fr"`
	Pc   *Node  `json:"pc"`
	Rsc  int    `json:"rsc"`
}

type responseEnvelope struct {
	Responses []response `json:"responses"`
}

// Node and leaf names within dgc_status. The numbering is the firmware's;
// treat it as a versioned contract.
const (
	nodeRoot     = "dgc_status"
	nodeUnit     = "e_1002"
	nodeControl  = "e_3001" // mode / setpoint / fan
	nodePower    = "e_A002"
	nodeSensors  = "e_A00B" // indoor temperature / humidity
	leafPower    = "p_01"
	leafMode     = "p_01"
	leafSetpoint = "p_03"
	leafFan      = "p_0A"
	leafTemp     = "p_01"
	leafHumidity = "p_02"
)
