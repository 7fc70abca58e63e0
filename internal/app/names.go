package app

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/thoreinstein/packprefs/internal/settings"
)

// ResolveNames fills display names for the character files. Cached names are
// used first; only the remaining IDs are looked up, and new results are added
// to the configuration cache. It returns how many of the character IDs now
// have a name. A lookup failure leaves cached names in place.
func (a *App) ResolveNames(ctx context.Context) (resolved, total int, err error) {
	ids := a.characterIDs()
	total = len(ids)
	if total == 0 {
		return 0, 0, nil
	}

	cache := a.cfg.NameCache()
	for _, id := range ids {
		if name, ok := cache[id]; ok {
			a.names[id] = name
		}
	}

	if a.resolver != nil {
		fresh, lookupErr := a.resolver.ResolveUncached(ctx, ids, cache)
		maps.Copy(a.names, fresh)
		a.cfg.CacheNames(fresh)
		err = lookupErr
	}

	for _, id := range ids {
		if _, ok := a.names[id]; ok {
			resolved++
		}
	}

	if err != nil {
		a.logger.Warn("name resolution failed", "error", err)
	} else {
		a.logger.Info("resolved character names", "resolved", resolved, "total", total)
	}
	return resolved, total, err
}

// characterIDs returns the distinct non-default character IDs in ascending order.
// Account IDs are not character IDs and are never looked up.
func (a *App) characterIDs() []uint64 {
	var ids []uint64
	for _, f := range a.files {
		if f.Kind == settings.KindCharacter && !f.IsDefault {
			ids = append(ids, f.ID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// DisplayName returns the label for a file.
func (a *App) DisplayName(f settings.File) string {
	switch {
	case f.IsDefault && f.Kind == settings.KindUser:
		return "Default (new accounts)"
	case f.IsDefault:
		return "Default (new characters)"
	case f.Kind == settings.KindUser:
		return fmt.Sprintf("Account %d", f.ID)
	}
	if name, ok := a.names[f.ID]; ok {
		return name
	}
	return fmt.Sprintf("Character %d", f.ID)
}

// Entry is a file as presented for selection.
type Entry struct {
	File  settings.File `json:"file"`
	Label string        `json:"label"`
}

// Selectable returns the files of kind for presentation, in classifier order,
// keeping only the first file for each (ID, default) pair. Names that differ
// only by case on a case-insensitive filesystem collapse to one entry here.
func (a *App) Selectable(kind settings.Kind) []Entry {
	type key struct {
		id        uint64
		isDefault bool
	}
	seen := make(map[key]bool)

	var out []Entry
	for _, f := range a.files {
		if f.Kind != kind {
			continue
		}
		k := key{f.ID, f.IsDefault}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Entry{File: f, Label: a.DisplayName(f)})
	}
	return out
}

// PreferredKind picks the kind to show first: accounts when there is at most
// one character file but several account files, characters otherwise.
func (a *App) PreferredKind() settings.Kind {
	chars, users := settings.Count(a.files)
	if chars <= 1 && users > 1 {
		return settings.KindUser
	}
	return settings.KindCharacter
}
