package mqtt

import "strings"

const (
	statusPrefix  = "kiosk/status/node/"
	controlPrefix = "kiosk/control/node/"

	// BroadcastRefresh asks every kiosk to reload reservations.
	BroadcastRefresh = "kiosk/control/broadcast/reservations/refresh"
)

// Status leaves published by a kiosk.
const (
	LeafPing  = "ping"
	LeafSwipe = "swipe"
	LeafLogin = "login"
)

// Control leaves a kiosk listens on.
const (
	LeafLink = "link"
)

// StatusTopic returns the status topic for node.
func StatusTopic(node, leaf string) string {
	return statusPrefix + node + "/" + leaf
}

// ControlTopic returns the control topic for node.
func ControlTopic(node, leaf string) string {
	return controlPrefix + node + "/" + leaf
}

// ControlLeaf extracts the leaf of a control topic addressed to node.
func ControlLeaf(topic, node string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, controlPrefix+node+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
