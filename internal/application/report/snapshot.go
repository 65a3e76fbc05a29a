package report

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"golang.org/x/sync/errgroup"
)

// LedgerSource is the read-only store the reports are computed from.
// Every method returns the full collection; an empty collection is an
// empty slice, never an error.
type LedgerSource interface {
	RawLedger(ctx context.Context, kind ledger.Kind) ([]ledger.RawRecord, error)
	Items(ctx context.Context) ([]inventory.Item, error)
	Stores(ctx context.Context) ([]inventory.Store, error)
	StoreItems(ctx context.Context) ([]inventory.StoreItem, error)
	Accounts(ctx context.Context) ([]finance.Account, error)
}

// Snapshot is an immutable copy of every input collection
type Snapshot struct {
	Raw        ledger.RawLedgers
	Items      []inventory.Item
	Stores     []inventory.Store
	StoreItems []inventory.StoreItem
	Accounts   []finance.Account
	LoadedAt   time.Time

	// Versions holds a content hash per collection, Version combines them.
	Versions map[string]uint64
	Version  uint64
}

// Collection names used in snapshot versions and errors
const (
	collectionItems      = "items"
	collectionStores     = "stores"
	collectionStoreItems = "store_items"
	collectionAccounts   = "accounts"
)

// loadSnapshot reads every collection concurrently. The reads are independent
// and may complete in any order; the first failure cancels the rest.
func loadSnapshot(ctx context.Context, source LedgerSource) (*Snapshot, error) {
	kinds := ledger.AllKinds()
	raws := make([][]ledger.RawRecord, len(kinds))
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			records, err := source.RawLedger(gctx, kind)
			if err != nil {
				return fmt.Errorf("failed to read %s ledger: %w", kind, err)
			}
			raws[i] = records
			return nil
		})
	}
	g.Go(func() error {
		items, err := source.Items(gctx)
		if err != nil {
			return fmt.Errorf("failed to read items: %w", err)
		}
		snap.Items = items
		return nil
	})
	g.Go(func() error {
		stores, err := source.Stores(gctx)
		if err != nil {
			return fmt.Errorf("failed to read stores: %w", err)
		}
		snap.Stores = stores
		return nil
	})
	g.Go(func() error {
		storeItems, err := source.StoreItems(gctx)
		if err != nil {
			return fmt.Errorf("failed to read store items: %w", err)
		}
		snap.StoreItems = storeItems
		return nil
	})
	g.Go(func() error {
		accounts, err := source.Accounts(gctx)
		if err != nil {
			return fmt.Errorf("failed to read accounts: %w", err)
		}
		snap.Accounts = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Raw = make(ledger.RawLedgers, len(kinds))
	for i, kind := range kinds {
		records := raws[i]
		if records == nil {
			records = []ledger.RawRecord{}
		}
		snap.Raw[kind] = records
	}
	if snap.Items == nil {
		snap.Items = []inventory.Item{}
	}
	if snap.Stores == nil {
		snap.Stores = []inventory.Store{}
	}
	if snap.StoreItems == nil {
		snap.StoreItems = []inventory.StoreItem{}
	}
	if snap.Accounts == nil {
		snap.Accounts = []finance.Account{}
	}
	snap.LoadedAt = time.Now()
	if err := snap.computeVersions(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Snapshot) computeVersions() error {
	s.Versions = make(map[string]uint64, len(s.Raw)+4)
	for kind, records := range s.Raw {
		h := xxhash.New()
		for _, r := range records {
			_, _ = h.Write(r)
			_, _ = h.Write([]byte{0})
		}
		s.Versions[kind.String()] = h.Sum64()
	}

	master := []struct {
		name string
		v    any
	}{
		{collectionItems, s.Items},
		{collectionStores, s.Stores},
		{collectionStoreItems, s.StoreItems},
		{collectionAccounts, s.Accounts},
	}
	for _, m := range master {
		data, err := json.Marshal(m.v)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", m.name, err)
		}
		s.Versions[m.name] = xxhash.Sum64(data)
	}

	s.Version = combineVersions(s.Versions)
	return nil
}

// combineVersions hashes collection versions in name order
func combineVersions(versions map[string]uint64) uint64 {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	h := xxhash.New()
	var buf [8]byte
	for _, name := range names {
		_, _ = h.WriteString(name)
		binary.LittleEndian.PutUint64(buf[:], versions[name])
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
