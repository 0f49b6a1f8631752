package repository

import (
	"context"
	"sync"
)

// Caches hold lookup maps primed before a sync fan-out: all sponsors by
// code, and per structure the semester-number → structure-semester-id
// map. They live for the process; curriculum data is treated as
// immutable during a run, so nothing invalidates them.
type Caches struct {
	mu            sync.RWMutex
	sponsors      map[string]int
	structureSems map[int]map[string]int
}

// NewCaches builds empty caches.
func NewCaches() *Caches {
	return &Caches{
		sponsors:      map[string]int{},
		structureSems: map[int]map[string]int{},
	}
}

type sponsorLister interface {
	Sponsors(ctx context.Context) (map[string]int, error)
}

type structureSemesterLister interface {
	StructureSemesterNumbers(ctx context.Context, structureID int) (map[string]int, error)
}

// PrimeSponsors loads every sponsor code once. Safe to call again; the
// newer map wins.
func (c *Caches) PrimeSponsors(ctx context.Context, repo sponsorLister) error {
	sponsors, err := repo.Sponsors(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sponsors = sponsors
	c.mu.Unlock()
	return nil
}

// PrimeStructure loads the semester map for one structure.
func (c *Caches) PrimeStructure(ctx context.Context, repo structureSemesterLister, structureID int) error {
	c.mu.RLock()
	_, done := c.structureSems[structureID]
	c.mu.RUnlock()
	if done {
		return nil
	}

	sems, err := repo.StructureSemesterNumbers(ctx, structureID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.structureSems[structureID] = sems
	c.mu.Unlock()
	return nil
}

// SponsorID resolves a sponsor code from the primed map.
func (c *Caches) SponsorID(code string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.sponsors[code]
	return id, ok
}

// StructureSemesterID resolves (structure, semester number), falling
// back through the foundation remap: the CMS spells the same slot "01"
// or "F1" depending on the page, likewise "02" and "F2".
func (c *Caches) StructureSemesterID(structureID int, number string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sems, ok := c.structureSems[structureID]
	if !ok {
		return 0, false
	}
	if id, ok := sems[number]; ok {
		return id, true
	}
	if remapped := remapSemesterNumber(number); remapped != "" {
		if id, ok := sems[remapped]; ok {
			return id, true
		}
	}
	return 0, false
}

func remapSemesterNumber(number string) string {
	switch number {
	case "01":
		return "F1"
	case "02":
		return "F2"
	case "F1":
		return "01"
	case "F2":
		return "02"
	}
	return ""
}
