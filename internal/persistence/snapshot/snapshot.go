// Package snapshot writes and reads compressed session snapshots: the filter
// state plus a summary of the last deposit build, enough to resume a panel
// session and to inspect one offline.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"oresight.gg/internal/prefs"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SessionV1 struct {
	Header Header `json:"header"`

	Seed      int64 `json:"seed"`
	BoundaryR int   `json:"boundary_r"`

	// Filter lists may be nil in snapshots from older builds; they load as
	// empty, uninitialized.
	Filter prefs.State `json:"filter"`

	LastScanTick uint64      `json:"last_scan_tick"`
	Deposits     []DepositV1 `json:"deposits,omitempty"`
}

type DepositV1 struct {
	Kind       string `json:"kind"`
	AnchorX    int    `json:"anchor_x"`
	AnchorZ    int    `json:"anchor_z"`
	Cells      int    `json:"cells"`
	TotalYield int    `json:"total_yield"`
}

func Write(path string, snap SessionV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	return nil
}

func Read(path string) (SessionV1, error) {
	var snap SessionV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is repeated in the body; skip it.
	_, _ = br.ReadBytes('\n')

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("snapshot decode: %w", err)
	}
	return snap, nil
}
