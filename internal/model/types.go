package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Params is the free parameter vector of the spiral curve model.
type Params struct {
	ThetaDeg float64 `json:"theta_deg"`
	M        float64 `json:"m"`
	X        float64 `json:"x"`
}

// Vector returns the parameters in optimizer order: theta, M, X.
func (p Params) Vector() []float64 {
	return []float64{p.ThetaDeg, p.M, p.X}
}

// FromVector builds Params from an optimizer vector in theta, M, X order.
func FromVector(v []float64) Params {
	return Params{ThetaDeg: v[0], M: v[1], X: v[2]}
}

// TracePoint is one entry of a restart's per-generation progress trace.
type TracePoint struct {
	Iteration int     `json:"iteration"`
	Objective float64 `json:"objective"`
}

// RestartResult summarizes a single independent global-search restart.
type RestartResult struct {
	Restart     int          `json:"restart"`
	Seed        int64        `json:"seed"`
	Params      Params       `json:"params"`
	Objective   float64      `json:"objective"`
	Evaluations int          `json:"evaluations"`
	Trace       []TracePoint `json:"trace,omitempty"`
}

// FitRun is the persistent record of a completed fit.
type FitRun struct {
	VersionedRecord
	ID             string  `json:"id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	DataPath       string  `json:"data_path,omitempty"`
	Observations   int     `json:"observations"`
	Seed           int64   `json:"seed"`
	PopulationSize int     `json:"population_size"`
	MaxIterations  int     `json:"max_iterations"`
	Restarts       int     `json:"restarts"`
	Params         Params  `json:"params"`
	Objective      float64 `json:"objective"`
	Evaluations    int     `json:"evaluations"`
	Refined        bool    `json:"refined"`
}
