package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"ibms/internal/amqp"
	"ibms/internal/core"
	applog "ibms/internal/log"
	"ibms/internal/ports"
)

// Publisher announces committed changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishChange(ctx context.Context, ev *amqp.ChangeEvent) error
}

// Generation counts committed mutations. Readers use it to tell whether a
// cached snapshot still reflects the store.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Current() uint64 { return g.n.Load() }

func (g *Generation) Bump() uint64 { return g.n.Add(1) }

// keyedMutex serialises read-modify-write cycles on a single aggregate.
// Entries are dropped once nobody holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// held reports how many keys currently have a holder or waiter.
func (k *keyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// notifier runs after every successful mutation.
type notifier struct {
	publisher Publisher
	gen       *Generation
}

func (n notifier) changed(ctx context.Context, entity, action, id string) {
	gen := n.gen.Bump()
	logger := applog.FromContext(ctx)
	fields := applog.NewFields().WithEntity(entity, id).WithOperation(action)
	logger.InfoContext(ctx, "Entity changed", append(fields.ToSlice(), applog.FieldGeneration, gen)...)

	if n.publisher == nil {
		return
	}
	// The change is committed; a lost event only delays the export.
	if err := n.publisher.PublishChange(ctx, amqp.NewChangeEvent(entity, action, id)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish change event",
			fields.WithOperation(applog.OpPublish).WithError(err).ToSlice()...)
	}
}

// checkInvestmentRefs resolves the investment's portfolio and verifies the
// sub-marketor belongs to it.
func checkInvestmentRefs(ctx context.Context, portfolios ports.PortfolioStore, inv core.Investment) error {
	if inv.PortfolioID == "" {
		return inv.CheckReferences(nil)
	}
	p, err := portfolios.GetPortfolio(ctx, inv.PortfolioID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: portfolio %s does not exist", core.ErrInvalidReference, inv.PortfolioID)
	}
	if err != nil {
		return fmt.Errorf("load portfolio %s: %w", inv.PortfolioID, err)
	}
	return inv.CheckReferences(&p)
}

// fillAccountIDs assigns ids to bank accounts that arrive without one.
func fillAccountIDs(accounts []core.BankAccount, newID func() string) {
	for i := range accounts {
		if accounts[i].ID == "" {
			accounts[i].ID = newID()
		}
	}
}

func validateAccounts(accounts []core.BankAccount) error {
	for _, b := range accounts {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}
