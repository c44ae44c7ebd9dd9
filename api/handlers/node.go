package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/polystake/noderegistry/api"
	"github.com/polystake/noderegistry/nodeprobe"
	"github.com/polystake/noderegistry/registry"
)

type healthStatus struct {
	err error
}

func (h healthStatus) MarshalJSON() ([]byte, error) {
	if h.err == nil {
		return json.Marshal("good")
	}
	return json.Marshal(fmt.Sprintf("bad: %s", h.err.Error()))
}

type healthCheckJSON struct {
	StakingGateway healthStatus `json:"staking_gateway"`
}

func (hc healthCheckJSON) String() string {
	b, err := json.MarshalIndent(hc, "", "  ")
	if err != nil {
		return fmt.Sprintf("error marshaling healthCheckJSON: %s", err.Error())
	}
	return string(b)
}

type Node struct {
	Prober          *nodeprobe.Prober
	GatewayNodeName string
}

func (h *Node) Version(w http.ResponseWriter, r *http.Request) error {
	return api.Render(w, r, struct {
		Version string `json:"version"`
	}{Version: registry.Version})
}

func (h *Node) Health(w http.ResponseWriter, r *http.Request) error {
	var resp healthCheckJSON
	resp.StakingGateway = healthStatus{h.Prober.Probe(r.Context(), h.GatewayNodeName)}
	return api.Render(w, r, resp)
}
