package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Catalogs struct {
	Kinds     KindCatalog
	Buildings BuildingCatalog
}

// KindCatalog is the registry of mineral kinds. EMPTY is always palette id 0 so a
// zero cell reads as "no mineral".
type KindCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]KindDef
	PaletteDigest string
	DefsDigest    string
}

type KindDef struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Commonality float64 `json:"commonality"`
	YieldMin    int     `json:"yield_min"`
	YieldMax    int     `json:"yield_max"`
}

type BuildingCatalog struct {
	Defs   map[string]BuildingDef
	Digest string
}

type BuildingDef struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Family           string  `json:"family"` // "DRILL", "RIG", ...
	MiningRadius     float64 `json:"mining_radius,omitempty"`
	HasPower         bool    `json:"has_power,omitempty"`
	WorkTicksPerLump int     `json:"work_ticks_per_lump,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadKinds(configDir, &c.Kinds); err != nil {
		return nil, err
	}
	if err := loadBuildings(filepath.Join(configDir, "buildings.json"), &c.Buildings); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// loadKinds reads kinds.json and then merges any *_pack.json extension files in
// lexical order. Packs may add new kinds or override the commonality of existing
// ones; this is the extension hook third-party def packs use.
func loadKinds(configDir string, out *KindCatalog) error {
	raw, err := os.ReadFile(filepath.Join(configDir, "kinds.json"))
	if err != nil {
		return err
	}

	var defs []KindDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("kinds.json: %w", err)
	}
	out.Defs = map[string]KindDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("kinds.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	digest := sha256.New()
	digest.Write(raw)

	packs, err := filepath.Glob(filepath.Join(configDir, "*_pack.json"))
	if err != nil {
		return err
	}
	sort.Strings(packs)
	for _, p := range packs {
		praw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var pdefs []KindDef
		if err := json.Unmarshal(praw, &pdefs); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		for _, d := range pdefs {
			if d.ID == "" {
				return fmt.Errorf("%s: empty id", filepath.Base(p))
			}
			if base, ok := out.Defs[d.ID]; ok {
				// Packs override commonality only; base label/yields win.
				base.Commonality = d.Commonality
				out.Defs[d.ID] = base
				continue
			}
			out.Defs[d.ID] = d
		}
		digest.Write(praw)
	}
	out.DefsDigest = hex.EncodeToString(digest.Sum(nil))

	if _, ok := out.Defs["EMPTY"]; !ok {
		return fmt.Errorf("kinds.json: missing EMPTY")
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	ids = append([]string{"EMPTY"}, filterOut(ids, "EMPTY")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadBuildings(path string, out *BuildingCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []BuildingDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("buildings.json: %w", err)
	}
	out.Defs = map[string]BuildingDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("buildings.json: empty id")
		}
		out.Defs[d.ID] = d
	}
	return nil
}

// Label returns the display label for a kind id, falling back to a title-cased
// form of the id itself.
func (k *KindCatalog) Label(id string) string {
	if d, ok := k.Defs[id]; ok && d.Label != "" {
		return d.Label
	}
	low := strings.ToLower(strings.ReplaceAll(id, "_", " "))
	if low == "" {
		return id
	}
	return strings.ToUpper(low[:1]) + low[1:]
}

// Commonality returns the rarity weight for a kind id (0 when unknown).
func (k *KindCatalog) Commonality(id string) float64 {
	return k.Defs[id].Commonality
}

func filterOut(ids []string, drop string) []string {
	outIDs := ids[:0]
	for _, id := range ids {
		if id != drop {
			outIDs = append(outIDs, id)
		}
	}
	return outIDs
}
