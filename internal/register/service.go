// Package register is the exclusive owner of the accounting journal. The
// index is bucketed by calendar day, newest entry first within a bucket.
// Mutations are serialized through a supervised single-writer loop; the
// find operations fan out over a snapshot of the buckets.
package register

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tally-dev/tally/internal/backup"
	"github.com/tally-dev/tally/internal/fanout"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/supervise"
)

// Snapshot is the full date-bucketed index at a point in time.
type Snapshot map[model.DateKey][]model.JournalEntry

// table is the canonical state. byRef and byID map back to the owning
// bucket so uniqueness checks and updates stay O(bucket).
type table struct {
	buckets map[model.DateKey][]model.JournalEntry
	byRef   map[string]model.DateKey
	byID    map[string]model.DateKey
}

func newTable() *table {
	return &table{
		buckets: map[model.DateKey][]model.JournalEntry{},
		byRef:   map[string]model.DateKey{},
		byID:    map[string]model.DateKey{},
	}
}

func (t *table) snapshot() Snapshot {
	snap := make(Snapshot, len(t.buckets))
	for key, entries := range t.buckets {
		copied := make([]model.JournalEntry, len(entries))
		for i, e := range entries {
			copied[i] = e.Clone()
		}
		snap[key] = copied
	}
	return snap
}

// Service is the public handle to the journal register owner.
type Service struct {
	sup   *supervise.Supervisor[*table]
	store *backup.Store[Snapshot]
}

// New wires a register. store may be nil for an unbacked deployment that
// accepts journal loss on crash; with a store attached the register
// mirrors the account directory's graceful-shutdown snapshot.
func New(store *backup.Store[Snapshot], opts supervise.Options) *Service {
	if opts.Name == "" {
		opts.Name = "journal-register"
	}
	s := &Service{store: store}
	s.sup = supervise.New(opts, s.restore, s.persist, s.handle)
	return s
}

// Start launches the owner, rehydrating from the recovery store when one
// is attached and holds a snapshot.
func (s *Service) Start() { s.sup.Start() }

// Stop shuts the owner down gracefully.
func (s *Service) Stop() { s.sup.Stop() }

func (s *Service) restore() *table {
	t := newTable()
	if s.store == nil {
		return t
	}
	snap, ok := s.store.Get()
	if !ok {
		return t
	}
	for key, entries := range snap {
		copied := make([]model.JournalEntry, len(entries))
		for i, e := range entries {
			copied[i] = e.Clone()
			t.byRef[e.ReferenceNumber] = key
			t.byID[e.ID] = key
		}
		t.buckets[key] = copied
	}
	return t
}

func (s *Service) persist(t *table) {
	if s.store == nil {
		return
	}
	s.store.Replace(t.snapshot())
}

// Commands.

type entryReply struct {
	entry model.JournalEntry
	err   error
}

type snapReply struct {
	snap Snapshot
	err  error
}

type createCmd struct {
	params Params
	reply  chan entryReply
}

func (c *createCmd) Reject(err error) { c.reply <- entryReply{err: err} }

type updateCmd struct {
	entry model.JournalEntry
	attrs UpdateAttrs
	reply chan entryReply
}

func (c *updateCmd) Reject(err error) { c.reply <- entryReply{err: err} }

type snapshotCmd struct {
	reply chan snapReply
}

func (c *snapshotCmd) Reject(err error) { c.reply <- snapReply{err: err} }

type resetCmd struct {
	reply chan snapReply
}

func (c *resetCmd) Reject(err error) { c.reply <- snapReply{err: err} }

type crashCmd struct{}

func (c *crashCmd) Reject(error) {}

func (s *Service) handle(t *table, cmd supervise.Command) {
	switch c := cmd.(type) {
	case *createCmd:
		entry, err := s.applyCreate(t, c.params)
		c.reply <- entryReply{entry: entry, err: err}
	case *updateCmd:
		entry, err := s.applyUpdate(t, c.entry, c.attrs)
		c.reply <- entryReply{entry: entry, err: err}
	case *snapshotCmd:
		c.reply <- snapReply{snap: t.snapshot()}
	case *resetCmd:
		t.buckets = map[model.DateKey][]model.JournalEntry{}
		t.byRef = map[string]model.DateKey{}
		t.byID = map[string]model.DateKey{}
		if s.store != nil {
			s.store.Clear()
		}
		c.reply <- snapReply{snap: Snapshot{}}
	case *crashCmd:
		panic("register owner crash requested")
	default:
		panic(fmt.Sprintf("unhandled register command %T", cmd))
	}
}

func (s *Service) applyCreate(t *table, p Params) (model.JournalEntry, error) {
	if strings.TrimSpace(p.ReferenceNumber) != "" {
		if _, exists := t.byRef[p.ReferenceNumber]; exists {
			return model.JournalEntry{}, fmt.Errorf("%w: %s", model.ErrDuplicateReferenceNumber, p.ReferenceNumber)
		}
	}
	p, err := ValidateParams(p)
	if err != nil {
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		ID:              uuid.NewString(),
		ReferenceNumber: p.ReferenceNumber,
		TransactionDate: p.TransactionDate,
		Description:     p.Description,
		LineItems:       p.TAccounts.lineItems(),
		AuditLogs:       []model.AuditLog{model.NewAuditLog(model.RecordJournalEntry, model.ActionCreate, p.AuditDetails)},
	}

	key := entry.DateKey()
	t.buckets[key] = append([]model.JournalEntry{entry}, t.buckets[key]...)
	t.byRef[entry.ReferenceNumber] = key
	t.byID[entry.ID] = key
	return entry.Clone(), nil
}

func (s *Service) applyUpdate(t *table, entry model.JournalEntry, attrs UpdateAttrs) (model.JournalEntry, error) {
	key, ok := t.byID[entry.ID]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: not a member of the register", model.ErrInvalidJournalEntry)
	}
	stored, idx := findInBucket(t.buckets[key], entry.ID)
	if idx < 0 || stored.ReferenceNumber != entry.ReferenceNumber {
		return model.JournalEntry{}, fmt.Errorf("%w: not a member of the register", model.ErrInvalidJournalEntry)
	}

	// Posting freezes the structural fields. Description, the posted
	// flag, and audit details stay editable.
	structural := attrs.TAccounts != nil ||
		(attrs.TransactionDate != nil && !attrs.TransactionDate.Equal(stored.TransactionDate))
	if stored.Posted && structural {
		return model.JournalEntry{}, model.ErrAlreadyPostedJournalEntry
	}
	if attrs.Posted != nil && stored.Posted && !*attrs.Posted {
		return model.JournalEntry{}, fmt.Errorf("%w: posted flag only moves forward", model.ErrInvalidParams)
	}

	if attrs.TAccounts != nil {
		if err := validateTAccounts(*attrs.TAccounts); err != nil {
			return model.JournalEntry{}, err
		}
	}
	if attrs.TransactionDate != nil && attrs.TransactionDate.IsZero() {
		return model.JournalEntry{}, fmt.Errorf("%w: transaction date must be set", model.ErrInvalidTransactionDate)
	}

	if attrs.Description != nil {
		stored.Description = *attrs.Description
	}
	if attrs.Posted != nil {
		stored.Posted = *attrs.Posted
	}
	if attrs.TAccounts != nil {
		stored.LineItems = attrs.TAccounts.lineItems()
	}
	if attrs.TransactionDate != nil {
		stored.TransactionDate = *attrs.TransactionDate
	}
	stored.AuditLogs = append(stored.AuditLogs, model.NewAuditLog(model.RecordJournalEntry, model.ActionUpdate, attrs.AuditDetails))

	newKey := stored.DateKey()
	if newKey != key {
		// The date moved: drop the entry from its old bucket by id and
		// insert into the new one.
		t.buckets[key] = removeFromBucket(t.buckets[key], stored.ID)
		if len(t.buckets[key]) == 0 {
			delete(t.buckets, key)
		}
		t.buckets[newKey] = append([]model.JournalEntry{stored}, t.buckets[newKey]...)
		t.byRef[stored.ReferenceNumber] = newKey
		t.byID[stored.ID] = newKey
	} else {
		t.buckets[key][idx] = stored
	}
	return stored.Clone(), nil
}

func findInBucket(entries []model.JournalEntry, id string) (model.JournalEntry, int) {
	for i, e := range entries {
		if e.ID == id {
			return e, i
		}
	}
	return model.JournalEntry{}, -1
}

func removeFromBucket(entries []model.JournalEntry, id string) []model.JournalEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Create validates the params, enforces reference-number uniqueness
// across the whole index, and prepends the new entry into its date
// bucket.
func (s *Service) Create(p Params) (model.JournalEntry, error) {
	cmd := &createCmd{params: p, reply: make(chan entryReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.JournalEntry{}, err
	}
	return r.entry, r.err
}

// Update applies the whitelisted attrs, appending one audit log entry
// and re-bucketing the entry when its transaction date moved.
func (s *Service) Update(entry model.JournalEntry, attrs UpdateAttrs) (model.JournalEntry, error) {
	cmd := &updateCmd{entry: entry, attrs: attrs, reply: make(chan entryReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.JournalEntry{}, err
	}
	return r.entry, r.err
}

// bucket pairs a date key with its entries for fan-out scans.
type bucket struct {
	key     model.DateKey
	entries []model.JournalEntry
}

func (s *Service) buckets() ([]bucket, error) {
	snap, err := s.State()
	if err != nil {
		return nil, err
	}
	parts := make([]bucket, 0, len(snap))
	for key, entries := range snap {
		parts = append(parts, bucket{key: key, entries: entries})
	}
	return parts, nil
}

// FindAll returns every entry across every bucket.
func (s *Service) FindAll() ([]model.JournalEntry, error) {
	parts, err := s.buckets()
	if err != nil {
		return nil, err
	}
	return fanout.Collect(parts, func(b bucket) []model.JournalEntry {
		return b.entries
	}), nil
}

// FindByReferenceNumber scans the buckets in parallel; first hit wins.
func (s *Service) FindByReferenceNumber(ref string) (model.JournalEntry, error) {
	if strings.TrimSpace(ref) == "" {
		return model.JournalEntry{}, model.ErrInvalidReferenceNumber
	}
	parts, err := s.buckets()
	if err != nil {
		return model.JournalEntry{}, err
	}
	entry, ok := fanout.First(parts, func(b bucket) (model.JournalEntry, bool) {
		for _, e := range b.entries {
			if e.ReferenceNumber == ref {
				return e, true
			}
		}
		return model.JournalEntry{}, false
	})
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: reference %s", model.ErrNotFound, ref)
	}
	return entry, nil
}

// FindByID scans the buckets in parallel; first hit wins.
func (s *Service) FindByID(id string) (model.JournalEntry, error) {
	if strings.TrimSpace(id) == "" {
		return model.JournalEntry{}, model.ErrInvalidID
	}
	parts, err := s.buckets()
	if err != nil {
		return model.JournalEntry{}, err
	}
	entry, ok := fanout.First(parts, func(b bucket) (model.JournalEntry, bool) {
		for _, e := range b.entries {
			if e.ID == id {
				return e, true
			}
		}
		return model.JournalEntry{}, false
	})
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: id %s", model.ErrNotFound, id)
	}
	return entry, nil
}

// FindByTransactionDate returns entries in every bucket whose key agrees
// with the descriptor on the fields present. A bare year or year-month
// matches the whole period.
func (s *Service) FindByTransactionDate(p model.PartialDate) ([]model.JournalEntry, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %+v", model.ErrInvalidTransactionDate, p)
	}
	parts, err := s.buckets()
	if err != nil {
		return nil, err
	}
	return fanout.Collect(parts, func(b bucket) []model.JournalEntry {
		if p.Matches(b.key) {
			return b.entries
		}
		return nil
	}), nil
}

// FindByDateRange returns entries whose bucket key lies within
// [from, to], compared field-wise on the fields present in each bound.
func (s *Service) FindByDateRange(from, to model.PartialDate) ([]model.JournalEntry, error) {
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: range %+v..%+v", model.ErrInvalidTransactionDate, from, to)
	}
	parts, err := s.buckets()
	if err != nil {
		return nil, err
	}
	return fanout.Collect(parts, func(b bucket) []model.JournalEntry {
		if from.CompareLower(b.key) && to.CompareUpper(b.key) {
			return b.entries
		}
		return nil
	}), nil
}

// Reset atomically replaces the register with an empty index and clears
// the recovery store when one is attached.
func (s *Service) Reset() (Snapshot, error) {
	cmd := &resetCmd{reply: make(chan snapReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return nil, err
	}
	return r.snap, r.err
}

// State returns a copy of the full bucketed index.
func (s *Service) State() (Snapshot, error) {
	cmd := &snapshotCmd{reply: make(chan snapReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return nil, err
	}
	return r.snap, r.err
}

// crash kills the current owner generation. Test hook.
func (s *Service) crash() {
	_ = s.sup.Send(&crashCmd{})
}
