package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const baseKinds = `[
  {"id":"EMPTY","label":"Empty","commonality":0},
  {"id":"IRON","label":"Iron","commonality":4.0,"yield_min":5,"yield_max":20},
  {"id":"COAL","label":"Coal","commonality":5.0,"yield_min":3,"yield_max":12}
]`

const baseBuildings = `[
  {"id":"POWERED_DRILL","label":"Powered drill","family":"DRILL","mining_radius":2.6,"has_power":true,"work_ticks_per_lump":12}
]`

func TestLoad_KindPaletteStartsAtEmpty(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kinds.json", baseKinds)
	writeConfig(t, dir, "buildings.json", baseBuildings)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Kinds.Palette[0] != "EMPTY" {
		t.Fatalf("palette[0]=%q want EMPTY", c.Kinds.Palette[0])
	}
	if c.Kinds.Index["EMPTY"] != 0 {
		t.Fatalf("EMPTY index=%d want 0", c.Kinds.Index["EMPTY"])
	}
	if len(c.Kinds.Palette) != 3 {
		t.Fatalf("palette=%v want 3 entries", c.Kinds.Palette)
	}
	// Non-empty kinds are sorted after EMPTY.
	if c.Kinds.Palette[1] != "COAL" || c.Kinds.Palette[2] != "IRON" {
		t.Fatalf("palette=%v", c.Kinds.Palette)
	}
	if c.Kinds.DefsDigest == "" || c.Kinds.PaletteDigest == "" {
		t.Fatalf("missing digests")
	}

	d := c.Kinds.Defs["IRON"]
	if d.Label != "Iron" || d.Commonality != 4.0 || d.YieldMin != 5 || d.YieldMax != 20 {
		t.Fatalf("IRON def=%+v", d)
	}
}

func TestLoad_MissingEmptyKindFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kinds.json", `[{"id":"IRON","label":"Iron","commonality":4.0}]`)
	writeConfig(t, dir, "buildings.json", baseBuildings)

	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error without EMPTY kind")
	}
}

func TestLoad_PacksExtendAndOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kinds.json", baseKinds)
	writeConfig(t, dir, "buildings.json", baseBuildings)
	writeConfig(t, dir, "glow_pack.json", `[
	  {"id":"LUMINITE","label":"Luminite","commonality":0.4,"yield_min":1,"yield_max":4},
	  {"id":"IRON","label":"Renamed iron","commonality":9.0,"yield_min":99,"yield_max":99}
	]`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// The pack adds its new kind.
	if _, ok := c.Kinds.Defs["LUMINITE"]; !ok {
		t.Fatalf("pack kind missing: %v", c.Kinds.Palette)
	}
	// For existing kinds only commonality is overridden.
	d := c.Kinds.Defs["IRON"]
	if d.Commonality != 9.0 {
		t.Fatalf("IRON commonality=%v want 9.0", d.Commonality)
	}
	if d.Label != "Iron" || d.YieldMin != 5 || d.YieldMax != 20 {
		t.Fatalf("pack overrode base fields: %+v", d)
	}
}

func TestLoad_PacksMergeInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kinds.json", baseKinds)
	writeConfig(t, dir, "buildings.json", baseBuildings)
	writeConfig(t, dir, "a_pack.json", `[{"id":"IRON","commonality":1.0}]`)
	writeConfig(t, dir, "b_pack.json", `[{"id":"IRON","commonality":2.0}]`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.Kinds.Commonality("IRON"); got != 2.0 {
		t.Fatalf("IRON commonality=%v want 2.0 (last pack wins)", got)
	}
}

func TestLoad_Buildings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "kinds.json", baseKinds)
	writeConfig(t, dir, "buildings.json", `[
	  {"id":"POWERED_DRILL","label":"Powered drill","family":"DRILL","mining_radius":2.6,"has_power":true,"work_ticks_per_lump":12},
	  {"id":"WORK_BENCH","label":"Work bench","family":"STATION"}
	]`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, ok := c.Buildings.Defs["POWERED_DRILL"]
	if !ok {
		t.Fatalf("POWERED_DRILL missing")
	}
	if d.Family != "DRILL" || d.MiningRadius != 2.6 || !d.HasPower || d.WorkTicksPerLump != 12 {
		t.Fatalf("POWERED_DRILL def=%+v", d)
	}
	if b := c.Buildings.Defs["WORK_BENCH"]; b.MiningRadius != 0 || b.HasPower {
		t.Fatalf("WORK_BENCH def=%+v", b)
	}
	if c.Buildings.Digest == "" {
		t.Fatalf("missing buildings digest")
	}
}

func TestKindCatalog_LabelFallback(t *testing.T) {
	k := KindCatalog{Defs: map[string]KindDef{
		"IRON": {ID: "IRON", Label: "Iron"},
	}}
	if got := k.Label("IRON"); got != "Iron" {
		t.Fatalf("label=%q", got)
	}
	if got := k.Label("DEEP_CRYSTAL"); got != "Deep crystal" {
		t.Fatalf("fallback label=%q", got)
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load shipped configs: %v", err)
	}
	if c.Kinds.Palette[0] != "EMPTY" {
		t.Fatalf("palette[0]=%q", c.Kinds.Palette[0])
	}
	// The luminite pack is merged over the base kinds.
	if _, ok := c.Kinds.Defs["LUMINITE"]; !ok {
		t.Fatalf("LUMINITE pack kind missing")
	}
	if got := c.Kinds.Commonality("CRYSTAL"); got != 1.2 {
		t.Fatalf("CRYSTAL commonality=%v want pack override 1.2", got)
	}
	if _, ok := c.Buildings.Defs["POWERED_DRILL"]; !ok {
		t.Fatalf("POWERED_DRILL missing from shipped buildings")
	}
}
