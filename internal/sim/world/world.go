package world

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"oresight.gg/internal/persistence/snapshot"
	"oresight.gg/internal/protocol"
	"oresight.gg/internal/sim/catalogs"
	"oresight.gg/internal/sim/overlay"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64
	BoundaryR  int

	SurveyTicks        int
	ScanPollTicks      uint64
	PanelPushTicks     uint64
	SnapshotEveryTicks uint64
}

type JoinRequest struct {
	SessionID string
	PanelName string
	Out       chan []byte
	Resp      chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Catalog protocol.CatalogMsg
}

type ActionEnvelope struct {
	SessionID string
	Act       protocol.ActMsg
}

// World is the single-threaded authoritative host simulation. All state must
// be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs

	tick atomic.Uint64

	grid      *Grid
	buildings *BuildingArena

	agents     map[string]*Agent
	agentOrder []string

	sessions map[string]*panelSession

	// ov is attached before Run and stepped once per tick.
	ov *overlay.Overlay

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextBuildingNum atomic.Uint64
	nextAgentNum    atomic.Uint64

	// Pending manual surveys, completion ticks.
	surveyDue []uint64

	// Optional snapshot sink (may be nil). Snapshot writing is off-thread.
	snapshotSink chan<- snapshot.SessionV1
}

type panelSession struct {
	ID  string
	Out chan []byte

	// expanded deposit keys, per-session view state
	expanded map[string]bool
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("tick rate must be positive")
	}
	gen, err := gridGenFrom(cfg, cats)
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:       cfg,
		catalogs:  cats,
		buildings: NewBuildingArena(),
		agents:    map[string]*Agent{},
		sessions:  map[string]*panelSession{},
		inbox:     make(chan ActionEnvelope, 256),
		join:      make(chan JoinRequest, 16),
		leave:     make(chan string, 16),
		stop:      make(chan struct{}),
	}
	w.grid = NewGrid(gen, cats)
	return w, nil
}

// gridGenFrom resolves kind palette ids and spawn tables from the catalog.
// Commonality doubles as the cluster seed chance (permille).
func gridGenFrom(cfg WorldConfig, cats *catalogs.Catalogs) (GridGen, error) {
	empty, ok := cats.Kinds.Index["EMPTY"]
	if !ok {
		return GridGen{}, fmt.Errorf("kind catalog missing EMPTY")
	}
	gen := GridGen{
		Seed:      cfg.Seed,
		BoundaryR: cfg.BoundaryR,
		Empty:     empty,
	}
	for _, id := range cats.Kinds.Palette {
		if id == "EMPTY" {
			continue
		}
		def := cats.Kinds.Defs[id]
		permille := int(def.Commonality * 10)
		if permille <= 0 {
			continue
		}
		gen.Spawns = append(gen.Spawns, KindSpawn{
			ID:       cats.Kinds.Index[id],
			Permille: permille,
			YieldMin: def.YieldMin,
			YieldMax: def.YieldMax,
		})
	}
	return gen, nil
}

func (w *World) AttachOverlay(ov *overlay.Overlay)            { w.ov = ov }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SessionV1) { w.snapshotSink = ch }
func (w *World) Grid() *Grid                                  { return w.grid }
func (w *World) Buildings() *BuildingArena                    { return w.buildings }
func (w *World) Catalogs() *catalogs.Catalogs                 { return w.catalogs }
func (w *World) BuildingDef(id string) (catalogs.BuildingDef, bool) {
	d, ok := w.catalogs.Buildings.Defs[id]
	return d, ok
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	tick := w.tick.Add(1)

	for _, req := range joins {
		w.handleJoin(req)
	}
	for _, id := range leaves {
		delete(w.sessions, id)
	}
	for _, env := range actions {
		w.applyAction(env)
	}

	w.advanceSurveys(tick)
	w.stepAgents()

	if w.ov != nil {
		w.ov.Step(tick)
	}

	if w.cfg.PanelPushTicks > 0 && tick%w.cfg.PanelPushTicks == 0 {
		w.pushPanels(tick)
	}
	if w.snapshotSink != nil && w.cfg.SnapshotEveryTicks > 0 && tick%w.cfg.SnapshotEveryTicks == 0 {
		w.emitSnapshot(tick)
	}
}

func (w *World) handleJoin(req JoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	// Replace an existing session with the same id (defensive).
	w.sessions[req.SessionID] = &panelSession{
		ID:       req.SessionID,
		Out:      req.Out,
		expanded: map[string]bool{},
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       req.SessionID,
		WorldParams: protocol.WorldParams{
			WorldID:       w.cfg.ID,
			TickRateHz:    w.cfg.TickRateHz,
			BoundaryR:     w.cfg.BoundaryR,
			Seed:          w.cfg.Seed,
			ScanPollTicks: w.cfg.ScanPollTicks,
		},
		Catalogs: protocol.CatalogDigests{
			KindDefs: protocol.DigestRef{
				Digest: w.catalogs.Kinds.DefsDigest,
				Count:  len(w.catalogs.Kinds.Palette),
			},
			BuildingsDigest: w.catalogs.Buildings.Digest,
		},
	}
	catalog := protocol.CatalogMsg{
		Type:            protocol.TypeCatalog,
		ProtocolVersion: protocol.Version,
		Name:            "kind_palette",
		Digest:          w.catalogs.Kinds.PaletteDigest,
		Part:            1,
		TotalParts:      1,
		Data:            w.catalogs.Kinds.Palette,
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: welcome, Catalog: catalog}
	}
}

// advanceSurveys fires the discovery signal for due manual surveys.
func (w *World) advanceSurveys(tick uint64) {
	due := w.surveyDue[:0]
	for _, t := range w.surveyDue {
		if tick >= t {
			if w.ov != nil {
				w.ov.NotifySurveyComplete()
			}
			continue
		}
		due = append(due, t)
	}
	w.surveyDue = due
}

func (w *World) emitSnapshot(tick uint64) {
	snap := snapshot.SessionV1{
		Header: snapshot.Header{
			Version: 1,
			WorldID: w.cfg.ID,
			Tick:    tick,
		},
		Seed:      w.cfg.Seed,
		BoundaryR: w.cfg.BoundaryR,
	}
	if w.ov != nil {
		snap.Filter = w.ov.Filter().Snapshot()
		snap.LastScanTick = w.ov.LastScanTick()
		for _, v := range w.ov.Views() {
			snap.Deposits = append(snap.Deposits, snapshot.DepositV1{
				Kind:       v.Kind,
				AnchorX:    v.Anchor.X,
				AnchorZ:    v.Anchor.Z,
				Cells:      v.CellCount,
				TotalYield: v.TotalYield,
			})
		}
	}
	select {
	case w.snapshotSink <- snap:
	default:
		// Sink backlogged; drop rather than stall the loop.
	}
}
