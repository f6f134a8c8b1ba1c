package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external program the publish pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of resolving one Requirement on this host.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	// Path is where the command resolved to; empty when unavailable.
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
}

var lookPath = exec.LookPath

// CheckBinaries resolves each requirement against PATH. Commands given as a
// path are checked in place.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = resolve(req)
	}
	return results
}

func resolve(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := lookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}
