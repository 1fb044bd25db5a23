package types

// ------------------------
// Retained service state
// ------------------------

// ServiceState is published retained under "<service>/state".
type ServiceState struct {
	Level  string `json:"level"`  // "idle", "running", "stopped", "error"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}

// ------------------------
// Scanner telemetry
// ------------------------

// ScanStats is published retained under "scanner/stats".
type ScanStats struct {
	Passes       uint32 `json:"passes"`
	LastPassUs   int64  `json:"last_pass_us"`
	Changes      uint32 `json:"changes"`       // cell changes since boot
	SelectErrors uint32 `json:"select_errors"` // failed mux writes since boot
	Occupied     int    `json:"occupied"`
	TSms         int64  `json:"ts_ms"`
}

// LinkStats is published retained under "hostlink/stats".
type LinkStats struct {
	Transport  string `json:"transport"` // "serial" | "i2c"
	Commands   uint32 `json:"commands"`
	Errors     uint32 `json:"errors"`     // unknown commands answered with the error byte
	Overwrites uint32 `json:"overwrites"` // I²C commands replaced before a read
	TSms       int64  `json:"ts_ms"`
}

// ------------------------
// Heartbeat
// ------------------------

// Heartbeat is published under "heartbeat/beat" once per interval.
type Heartbeat struct {
	Seq      uint32 `json:"seq"`
	UptimeS  int64  `json:"uptime_s"`
	Passes   uint32 `json:"passes"`
	PassRate uint32 `json:"pass_rate"` // passes per second over the last interval
	Occupied int    `json:"occupied"`
	Commands uint32 `json:"commands"`
	TSms     int64  `json:"ts_ms"`
}
