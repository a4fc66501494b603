// Package snapshot exports and imports the milestone and lead collections
// as a single JSON document. Every field round-trips exactly; an empty
// keyword set stays an empty array, never null or absent.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"

	leaddomain "donorops_backend/internal/leads/domain"
	leadrepo "donorops_backend/internal/leads/repository"
	msdomain "donorops_backend/internal/milestones/domain"
	msrepo "donorops_backend/internal/milestones/repository"
)

// Snapshot is the on-disk document.
type Snapshot struct {
	ExportedAt time.Time            `json:"exportedAt"`
	Milestones []msdomain.Milestone `json:"milestones"`
	Leads      []leaddomain.Lead    `json:"leads"`
}

// Write serializes the snapshot and replaces path atomically, so a crashed
// export never leaves a truncated file behind.
func Write(path string, snap Snapshot) error {
	for i := range snap.Milestones {
		snap.Milestones[i].Normalize()
	}
	if snap.Milestones == nil {
		snap.Milestones = []msdomain.Milestone{}
	}
	if snap.Leads == nil {
		snap.Leads = []leaddomain.Lead{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Read loads a snapshot from disk.
func Read(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	for i := range snap.Milestones {
		snap.Milestones[i].Normalize()
	}
	return snap, nil
}

// MilestoneSource is the milestone query surface the exporter needs. An
// unfiltered List covers the whole collection.
type MilestoneSource interface {
	List(ctx context.Context, params msrepo.ListParams) ([]msdomain.Milestone, error)
}

// LeadSource is the lead query surface the exporter needs.
type LeadSource interface {
	List(ctx context.Context, params leadrepo.ListParams) ([]leaddomain.Lead, error)
}

// Exporter gathers both collections and writes the snapshot document.
type Exporter struct {
	milestones MilestoneSource
	leads      LeadSource
	now        func() time.Time
}

// NewExporter creates an exporter. now supplies the export timestamp.
func NewExporter(milestones MilestoneSource, leads LeadSource, now func() time.Time) *Exporter {
	return &Exporter{milestones: milestones, leads: leads, now: now}
}

// Export writes the current state of both collections to path.
func (e *Exporter) Export(ctx context.Context, path string) (Snapshot, error) {
	milestones, err := e.milestones.List(ctx, msrepo.ListParams{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("export milestones: %w", err)
	}
	leads, err := e.leads.List(ctx, leadrepo.ListParams{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("export leads: %w", err)
	}

	snap := Snapshot{ExportedAt: e.now(), Milestones: milestones, Leads: leads}
	if err := Write(path, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
