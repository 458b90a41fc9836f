package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PanelName       string            `json:"panel_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	WorldID       string `json:"world_id"`
	TickRateHz    int    `json:"tick_rate_hz"`
	BoundaryR     int    `json:"boundary_r"`
	Seed          int64  `json:"seed"`
	ScanPollTicks uint64 `json:"scan_poll_ticks"`
}

type CatalogDigests struct {
	KindDefs        DigestRef `json:"kind_defs"`
	BuildingsDigest string    `json:"buildings_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CATALOG (server -> client), sent once after WELCOME.
type CatalogMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	Digest          string `json:"digest"`
	Part            int    `json:"part"`
	TotalParts      int    `json:"total_parts"`
	Data            any    `json:"data"`
}

// PANEL (server -> client), the filtered deposit read-model.
type PanelMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	LastScanTick    uint64       `json:"last_scan_tick"`
	Deposits        []DepositRow `json:"deposits"`
	Kinds           []KindRow    `json:"kinds"`
}

type DepositRow struct {
	Key         string  `json:"key"`
	Kind        string  `json:"kind"`
	Label       string  `json:"label"`
	Commonality float64 `json:"commonality"`
	Anchor      [2]int  `json:"anchor"`
	Cells       int     `json:"cells"`
	TotalYield  int     `json:"total_yield"`

	Drills       int        `json:"drills"`
	ActiveDrills int        `json:"active_drills"`
	Expanded     bool       `json:"expanded,omitempty"`
	DrillRows    []DrillRow `json:"drill_rows,omitempty"`
}

type DrillRow struct {
	DrillID        string  `json:"drill_id"`
	State          string  `json:"state"` // IDLE | NO_POWER | WORKING
	WorkerID       string  `json:"worker_id,omitempty"`
	Powered        bool    `json:"powered"`
	Forbidden      bool    `json:"forbidden"`
	Progress       float64 `json:"progress"`
	MineableAmount int     `json:"mineable_amount"`
}

type KindRow struct {
	Kind               string  `json:"kind"`
	Label              string  `json:"label"`
	Commonality        float64 `json:"commonality"`
	Enabled            bool    `json:"enabled"`
	ExplicitlyDisabled bool    `json:"explicitly_disabled"`
	Discovered         bool    `json:"discovered"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActionID        string `json:"action_id,omitempty"`
	Op              string `json:"op"`

	Kind       string `json:"kind,omitempty"`        // TOGGLE_KIND
	TargetID   string `json:"target_id,omitempty"`   // SET_FORBIDDEN (building)
	DepositKey string `json:"deposit_key,omitempty"` // EXPAND/COLLAPSE/SET_FORBIDDEN
	On         *bool  `json:"on,omitempty"`          // SET_FORBIDDEN
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
	ActionID string `json:"action_id,omitempty"`
}
