package dto

// StaffAckResponse acknowledges a full list replacement.
type StaffAckResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
