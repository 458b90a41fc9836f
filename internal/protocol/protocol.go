package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeCatalog = "CATALOG"
	TypePanel   = "PANEL"
	TypeAct     = "ACT"
	TypeError   = "ERROR"
)

// Panel actions.
const (
	OpToggleKind      = "TOGGLE_KIND"
	OpEnableAllKinds  = "ENABLE_ALL_KINDS"
	OpDisableAllKinds = "DISABLE_ALL_KINDS"
	OpExpandDeposit   = "EXPAND_DEPOSIT"
	OpCollapseDeposit = "COLLAPSE_DEPOSIT"
	OpSetForbidden    = "SET_FORBIDDEN"
	OpRequestSurvey   = "REQUEST_SURVEY"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
