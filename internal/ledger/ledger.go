// Package ledger wires the registry engine: recovery stores first, then
// the supervised owners, in that order. It is the surface callers hold;
// creates go through the transient-retry policy so a restarting owner is
// retried with backoff instead of surfacing immediately.
package ledger

import (
	"github.com/tally-dev/tally/internal/backup"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/directory"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/register"
	"github.com/tally-dev/tally/internal/retry"
	"github.com/tally-dev/tally/internal/supervise"
)

// Ledger bundles the two registries over their recovery stores.
type Ledger struct {
	Accounts *directory.Service
	Journal  *register.Service

	accountStore *backup.Store[directory.Snapshot]
	journalStore *backup.Store[register.Snapshot]
	retry        retry.Policy
}

// Open builds the stores, wires the owners over them, and starts both.
func Open(cfg *config.Config) *Ledger {
	opts := supervise.Options{
		CallTimeout: cfg.Registry.Timeout(),
		MaxRestarts: cfg.Registry.MaxRestarts,
		MailboxSize: cfg.Registry.MailboxSize,
	}

	l := &Ledger{
		accountStore: backup.NewStore[directory.Snapshot](),
		retry:        retryPolicy(cfg),
	}
	if cfg.Registry.JournalSnapshots {
		l.journalStore = backup.NewStore[register.Snapshot]()
	}

	l.Accounts = directory.New(l.accountStore, opts)
	l.Journal = register.New(l.journalStore, opts)
	l.Accounts.Start()
	l.Journal.Start()
	return l
}

func retryPolicy(cfg *config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	if initial, maxElapsed := cfg.Retry.Intervals(); initial > 0 || maxElapsed > 0 {
		if initial > 0 {
			p.InitialInterval = initial
		}
		if maxElapsed > 0 {
			p.MaxElapsedTime = maxElapsed
		}
	}
	return p
}

// Close stops both owners gracefully, mirroring their state to the
// recovery stores.
func (l *Ledger) Close() {
	l.Journal.Stop()
	l.Accounts.Stop()
}

// CreateAccount delegates to the directory, retrying transient
// owner-unavailable failures with bounded backoff.
func (l *Ledger) CreateAccount(p directory.Params) (model.Account, error) {
	return retry.Do(l.retry, func() (model.Account, error) {
		return l.Accounts.Create(p)
	})
}

// CreateEntry delegates to the register with the same retry policy.
func (l *Ledger) CreateEntry(p register.Params) (model.JournalEntry, error) {
	return retry.Do(l.retry, func() (model.JournalEntry, error) {
		return l.Journal.Create(p)
	})
}
