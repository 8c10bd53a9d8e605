package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cjjwisniewski/seeker-functions/internal/repository"
)

// setAliases translates set codes Cardtrader spells differently than the
// seeking list does. Applied before every catalog lookup.
var setAliases = map[string]string{
	"4bb": "4ebb",
}

// Resolver maps a seeking item to Cardtrader's opaque blueprint id via the
// locally harvested catalog. Lookup is by (aliased set code, exact display
// name); ambiguous names resolve to the first match deterministically.
type Resolver struct {
	catalog repository.CatalogRepository
	logger  *slog.Logger
}

// NewResolver creates a catalog resolver.
func NewResolver(catalog repository.CatalogRepository, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve returns the blueprint id for the given set code and card name.
// ok=false means no usable catalog match; the caller clears the item's
// marketplace state instead of querying. A repository error is returned as-is
// so the caller can skip the item without clearing it.
func (r *Resolver) Resolve(ctx context.Context, setCode, name string) (int64, bool, error) {
	if alias, found := setAliases[setCode]; found {
		setCode = alias
	}

	entries, err := r.catalog.FindByName(ctx, setCode, name)
	if err != nil {
		return 0, false, fmt.Errorf("resolve %q in set %s: %w", name, setCode, err)
	}

	if len(entries) == 0 {
		r.logger.InfoContext(ctx, "no catalog match for card",
			slog.String("set_code", setCode),
			slog.String("name", name),
		)
		return 0, false, nil
	}

	if len(entries) > 1 {
		r.logger.WarnContext(ctx, "ambiguous catalog match, using first entry",
			slog.String("set_code", setCode),
			slog.String("name", name),
			slog.Int("matches", len(entries)),
			slog.Int64("blueprint_id", entries[0].BlueprintID),
		)
	}

	if entries[0].BlueprintID == 0 {
		r.logger.WarnContext(ctx, "catalog entry has no blueprint id",
			slog.String("set_code", setCode),
			slog.String("name", name),
		)
		return 0, false, nil
	}

	return entries[0].BlueprintID, true, nil
}
