package cm

// Cluster is an ApiCluster.
type Cluster struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Host is an ApiHost in the full view.
type Host struct {
	HostID            string `json:"hostId"`
	IPAddress         string `json:"ipAddress"`
	Hostname          string `json:"hostname"`
	NumCores          int    `json:"numCores"`
	TotalPhysMemBytes int64  `json:"totalPhysMemBytes"`
}

// MemoryMB returns the host memory in whole mebibytes.
func (h Host) MemoryMB() int64 {
	return h.TotalPhysMemBytes / 1024 / 1024
}

// Service is an ApiService.
type Service struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HostRef points at a host by id.
type HostRef struct {
	HostID string `json:"hostId"`
}

// Role is an ApiRole.
type Role struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	HostRef HostRef `json:"hostRef"`
}

// RoleConfigGroup is an ApiRoleConfigGroup.
type RoleConfigGroup struct {
	Name        string `json:"name"`
	RoleType    string `json:"roleType"`
	Base        bool   `json:"base"`
	DisplayName string `json:"displayName,omitempty"`
}

// Config is one configuration entry.
type Config struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CommandInfo is an ApiCommand.
type CommandInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	Success       bool   `json:"success"`
	ResultMessage string `json:"resultMessage,omitempty"`
}

type itemList[T any] struct {
	Items []T `json:"items"`
}
