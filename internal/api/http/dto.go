package http

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is returned by /stats.
type StatsResponse struct {
	Rooms       int `json:"rooms"`
	Members     int `json:"members"`
	Connections int `json:"connections"`
}

// LifecycleResponse is returned by /config/lifecycle. Durations use Go's
// duration string format ("5m0s").
type LifecycleResponse struct {
	GraceInterval string `json:"graceInterval"`
	SweepInterval string `json:"sweepInterval"`
	MaxAge        string `json:"maxAge"`
	CodeLength    int    `json:"codeLength"`
	MaxChatLength int    `json:"maxChatLength"`
}

type RoomCodeURI struct {
	Code string `uri:"code" binding:"required,alphanum"`
}
