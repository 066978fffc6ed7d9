// Package directory is the exclusive owner of the chart of accounts.
// Every mutation is serialized through a supervised single-writer loop;
// reads fan out over a snapshot so they never hold the mailbox open.
package directory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tally-dev/tally/internal/backup"
	"github.com/tally-dev/tally/internal/fanout"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/supervise"
)

// Snapshot is the directory's canonical map at a point in time, keyed by
// account code. The recovery store holds at most one.
type Snapshot map[string]model.Account

// Sort fields accepted by Sort.
const (
	FieldCode = "code"
	FieldName = "name"
)

// table is the canonical state. byName maps the lowercased name to the
// owning code, keeping both uniqueness checks O(1).
type table struct {
	byCode map[string]model.Account
	byName map[string]string
}

func newTable() *table {
	return &table{byCode: map[string]model.Account{}, byName: map[string]string{}}
}

func (t *table) snapshot() Snapshot {
	snap := make(Snapshot, len(t.byCode))
	for code, acct := range t.byCode {
		snap[code] = acct.Clone()
	}
	return snap
}

// Service is the public handle to the account directory owner.
type Service struct {
	sup   *supervise.Supervisor[*table]
	store *backup.Store[Snapshot]
}

// New wires a directory against its recovery store. Call Start before
// using it.
func New(store *backup.Store[Snapshot], opts supervise.Options) *Service {
	if opts.Name == "" {
		opts.Name = "account-directory"
	}
	s := &Service{store: store}
	s.sup = supervise.New(opts, s.restore, s.persist, s.handle)
	return s
}

// Start launches the owner, rehydrating state from the recovery store's
// current snapshot when one exists.
func (s *Service) Start() { s.sup.Start() }

// Stop shuts the owner down gracefully, mirroring the current state to
// the recovery store first.
func (s *Service) Stop() { s.sup.Stop() }

func (s *Service) restore() *table {
	t := newTable()
	snap, ok := s.store.Get()
	if !ok {
		return t
	}
	for code, acct := range snap {
		t.byCode[code] = acct.Clone()
		t.byName[strings.ToLower(acct.Name)] = code
	}
	return t
}

func (s *Service) persist(t *table) {
	s.store.Replace(t.snapshot())
}

// Commands. One struct per operation; the owner loop matches the set
// exhaustively. Reply channels are buffered so a late reply never blocks
// the owner.

type acctReply struct {
	account model.Account
	err     error
}

type snapReply struct {
	snap Snapshot
	err  error
}

type createCmd struct {
	params Params
	reply  chan acctReply
}

func (c *createCmd) Reject(err error) { c.reply <- acctReply{err: err} }

type updateCmd struct {
	account model.Account
	attrs   UpdateAttrs
	reply   chan acctReply
}

func (c *updateCmd) Reject(err error) { c.reply <- acctReply{err: err} }

type findCmd struct {
	code  string // exactly one of code/name is set
	name  string
	reply chan acctReply
}

func (c *findCmd) Reject(err error) { c.reply <- acctReply{err: err} }

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

// handle applies one command to the canonical table.
func (s *Service) handle(t *table, cmd supervise.Command) {
	switch c := cmd.(type) {
	case *createCmd:
		acct, err := s.applyCreate(t, c.params)
		c.reply <- acctReply{account: acct, err: err}
	case *updateCmd:
		acct, err := s.applyUpdate(t, c.account, c.attrs)
		c.reply <- acctReply{account: acct, err: err}
	case *findCmd:
		acct, err := s.applyFind(t, c.code, c.name)
		c.reply <- acctReply{account: acct, err: err}
	case *snapshotCmd:
		c.reply <- snapReply{snap: t.snapshot()}
	case *resetCmd:
		t.byCode = map[string]model.Account{}
		t.byName = map[string]string{}
		s.store.Clear()
		c.reply <- snapReply{snap: Snapshot{}}
	case *crashCmd:
		panic("directory owner crash requested")
	default:
		panic(fmt.Sprintf("unhandled directory command %T", cmd))
	}
}

func (s *Service) applyCreate(t *table, p Params) (model.Account, error) {
	p, err := ValidateParams(p)
	if err != nil {
		return model.Account{}, err
	}

	// A hit on either lookup aborts the create, even when the other key
	// is free.
	if _, exists := t.byCode[p.Code]; exists {
		return model.Account{}, fmt.Errorf("%w: code %s", model.ErrAccountAlreadyExists, p.Code)
	}
	if _, exists := t.byName[strings.ToLower(p.Name)]; exists {
		return model.Account{}, fmt.Errorf("%w: name %s", model.ErrAccountAlreadyExists, p.Name)
	}

	acct := model.Account{
		Code:           p.Code,
		Name:           p.Name,
		Classification: p.Classification,
		Description:    p.Description,
		Active:         p.Active,
		AuditLogs:      []model.AuditLog{model.NewAuditLog(model.RecordAccount, model.ActionCreate, p.AuditDetails)},
	}
	t.byCode[acct.Code] = acct
	t.byName[strings.ToLower(acct.Name)] = acct.Code
	return acct.Clone(), nil
}

func (s *Service) applyUpdate(t *table, acct model.Account, attrs UpdateAttrs) (model.Account, error) {
	stored, ok := t.byCode[acct.Code]
	if !ok || stored.Name != acct.Name {
		return model.Account{}, fmt.Errorf("%w: not a member of the directory", model.ErrInvalidAccount)
	}
	if err := validateUpdateAttrs(attrs); err != nil {
		return model.Account{}, err
	}

	if attrs.Name != nil && !strings.EqualFold(*attrs.Name, stored.Name) {
		if _, taken := t.byName[strings.ToLower(*attrs.Name)]; taken {
			return model.Account{}, fmt.Errorf("%w: name %s", model.ErrAccountAlreadyExists, *attrs.Name)
		}
	}

	details := attrs.AuditDetails
	appendChange := func(field string, from, to any) {
		d := map[string]any{"field": field, "from": from, "to": to}
		for k, v := range details {
			d[k] = v
		}
		stored.AuditLogs = append(stored.AuditLogs, model.NewAuditLog(model.RecordAccount, model.ActionUpdate, d))
	}

	if attrs.Name != nil && *attrs.Name != stored.Name {
		delete(t.byName, strings.ToLower(stored.Name))
		appendChange("name", stored.Name, *attrs.Name)
		stored.Name = *attrs.Name
		t.byName[strings.ToLower(stored.Name)] = stored.Code
	}
	if attrs.Description != nil && *attrs.Description != stored.Description {
		appendChange("description", stored.Description, *attrs.Description)
		stored.Description = *attrs.Description
	}
	if attrs.Active != nil && *attrs.Active != stored.Active {
		appendChange("active", stored.Active, *attrs.Active)
		stored.Active = *attrs.Active
	}

	// Reinsert under the key. Code is not editable, so the key itself
	// never changes.
	t.byCode[stored.Code] = stored
	return stored.Clone(), nil
}

func (s *Service) applyFind(t *table, code, name string) (model.Account, error) {
	if code != "" {
		acct, ok := t.byCode[code]
		if !ok {
			return model.Account{}, fmt.Errorf("%w: code %s", model.ErrNotFound, code)
		}
		return acct.Clone(), nil
	}
	codeForName, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: name %s", model.ErrNotFound, name)
	}
	return t.byCode[codeForName].Clone(), nil
}

// Create validates params, enforces code and name uniqueness, seeds the
// create audit log, and inserts the account.
func (s *Service) Create(p Params) (model.Account, error) {
	cmd := &createCmd{params: p, reply: make(chan acctReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.Account{}, err
	}
	return r.account, r.err
}

// Update applies the whitelisted attrs to a directory member, appending
// one audit log entry per changed field.
func (s *Service) Update(acct model.Account, attrs UpdateAttrs) (model.Account, error) {
	cmd := &updateCmd{account: acct, attrs: attrs, reply: make(chan acctReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.Account{}, err
	}
	return r.account, r.err
}

// FindByCode looks an account up by its primary key.
func (s *Service) FindByCode(code string) (model.Account, error) {
	if strings.TrimSpace(code) == "" {
		return model.Account{}, model.ErrInvalidCode
	}
	cmd := &findCmd{code: code, reply: make(chan acctReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.Account{}, err
	}
	return r.account, r.err
}

// FindByName looks an account up by name, case-insensitively.
func (s *Service) FindByName(name string) (model.Account, error) {
	if strings.TrimSpace(name) == "" {
		return model.Account{}, model.ErrInvalidName
	}
	cmd := &findCmd{name: name, reply: make(chan acctReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return model.Account{}, err
	}
	return r.account, r.err
}

// Search matches the query as a case-insensitive substring of code or
// name, scanning a point-in-time snapshot in parallel. A miss is an
// empty result, not an error.
func (s *Service) Search(query string) ([]model.Account, error) {
	snap, err := s.State()
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(snap))
	for _, acct := range snap {
		accounts = append(accounts, acct)
	}

	q := strings.ToLower(query)
	return fanout.Collect(accounts, func(acct model.Account) []model.Account {
		if strings.Contains(strings.ToLower(acct.Code), q) || strings.Contains(strings.ToLower(acct.Name), q) {
			return []model.Account{acct}
		}
		return nil
	}), nil
}

// Sort returns all accounts ordered ascending by code or name.
func (s *Service) Sort(field string) ([]model.Account, error) {
	if field != FieldCode && field != FieldName {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidField, field)
	}
	snap, err := s.State()
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(snap))
	for _, acct := range snap {
		accounts = append(accounts, acct)
	}
	slices.SortFunc(accounts, func(a, b model.Account) int {
		if field == FieldCode {
			return strings.Compare(a.Code, b.Code)
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return accounts, nil
}

// Reset atomically replaces the directory with an empty one and clears
// the recovery store.
func (s *Service) Reset() (Snapshot, error) {
	cmd := &resetCmd{reply: make(chan snapReply, 1)}
	r, err := supervise.Call(s.sup, cmd, cmd.reply)
	if err != nil {
		return nil, err
	}
	return r.snap, r.err
}

// State returns a copy of the full directory keyed by code.
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
