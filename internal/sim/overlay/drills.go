package overlay

// Drill is the capability surface of a drill-like building. Concrete adapters
// (native powered drills, third-party rigs) live outside the overlay; the core
// never inspects building types.
type Drill interface {
	ID() string
	Cell() Cell
	// Alive reports whether the building is still spawned and placed. Dead
	// handles are skipped wherever encountered.
	Alive() bool
	Forbidden() bool
	// Powered reports the power state. Buildings without a power hookup report
	// true.
	Powered() bool
	// ProgressFraction is the current work cycle progress in [0,1].
	ProgressFraction() float64
	MiningRadius() float64
	// InteractionCell is where a worker stands while operating the drill.
	InteractionCell() Cell
}

// DrillSource enumerates the host's drill-like buildings.
type DrillSource interface {
	Drills() []Drill
}

// AgentInfo is the slice of host agent state the associator needs.
type AgentInfo struct {
	ID           string
	Cell         Cell
	TaskTargetID string
}

type AgentSource interface {
	Agents() []AgentInfo
}

type DrillState int

const (
	StateIdle DrillState = iota
	StateNoPower
	StateWorking
)

func (s DrillState) String() string {
	switch s {
	case StateNoPower:
		return "NO_POWER"
	case StateWorking:
		return "WORKING"
	default:
		return "IDLE"
	}
}

// DrillStatus is derived per refresh, never persisted. Powered, Forbidden and
// Progress follow the fast cadence; WorkerID and MineableAmount the slow one.
type DrillStatus struct {
	DrillID    string
	DepositKey string

	State     DrillState
	WorkerID  string
	Powered   bool
	Forbidden bool
	Progress  float64

	MineableAmount int
}

// stateOf is the pure status transition: no power wins, then a present worker,
// then idle.
func stateOf(powered bool, workerID string) DrillState {
	if !powered {
		return StateNoPower
	}
	if workerID != "" {
		return StateWorking
	}
	return StateIdle
}

// associate attaches each live drill to the first deposit in list order with a
// cell inside the drill's mining radius. A drill contributes to at most one
// deposit even when radii overlap; first match wins.
func associate(deposits []*Deposit, drills []Drill) map[string][]Drill {
	byDeposit := make(map[string][]Drill)
	for _, dr := range drills {
		if dr == nil || !dr.Alive() {
			continue
		}
		pos := dr.Cell()
		radius := dr.MiningRadius()
		for _, dep := range deposits {
			if !depositInRange(dep, pos, radius) {
				continue
			}
			key := dep.Key()
			byDeposit[key] = append(byDeposit[key], dr)
			break
		}
	}
	return byDeposit
}

func depositInRange(dep *Deposit, pos Cell, radius float64) bool {
	for _, c := range dep.Cells {
		if cellDist(pos, c) <= radius {
			return true
		}
	}
	return false
}

// workerFor scans all agents for one working this drill: either its current
// task target is the drill, or it stands on the drill's interaction cell while
// its task target cannot be resolved (host adapters may not expose targets).
func workerFor(agents []AgentInfo, dr Drill) string {
	id := dr.ID()
	ic := dr.InteractionCell()
	for _, a := range agents {
		if a.TaskTargetID == id {
			return a.ID
		}
		if a.TaskTargetID == "" && a.Cell == ic {
			return a.ID
		}
	}
	return ""
}

// mineableAmount sums the remaining yield of deposit cells inside the drill's
// radius. This walks cells in a radius, hence the slow cadence.
func mineableAmount(o Oracle, dep *Deposit, dr Drill) int {
	if o == nil || dep == nil {
		return 0
	}
	pos := dr.Cell()
	radius := dr.MiningRadius()
	total := 0
	for _, c := range dep.Cells {
		if cellDist(pos, c) <= radius {
			total += o.AmountAt(c)
		}
	}
	return total
}
