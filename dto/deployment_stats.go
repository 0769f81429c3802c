package dto

// DeploymentStatsResponse aggregates pod resource usage for a deployment
type DeploymentStatsResponse struct {
	Name        string `json:"name"`
	PodCount    int    `json:"podCount"`
	CPUMilli    int64  `json:"cpuMilli"`
	MemoryBytes int64  `json:"memoryBytes"`
}
