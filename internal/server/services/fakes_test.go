package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/dbx"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/customers"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/emaillogs"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/templates"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeRepoManager hands out the same fake repositories for every handle.
type fakeRepoManager struct {
	users     *fakeUsersRepo
	roles     *fakeRolesRepo
	customers *fakeCustomersRepo
	emailLogs *fakeEmailLogsRepo
	templates *fakeTemplatesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:     newFakeUsersRepo(),
		roles:     &fakeRolesRepo{byID: map[int64]*models.Role{}},
		customers: &fakeCustomersRepo{byID: map[int64]*models.Customer{}},
		emailLogs: &fakeEmailLogsRepo{failOn: map[int]error{}},
		templates: &fakeTemplatesRepo{byID: map[string]*models.EmailTemplate{}},
	}
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return f.users }
func (f *fakeRepoManager) Roles(dbx.DBTX) roles.Repository              { return f.roles }
func (f *fakeRepoManager) Customers(dbx.DBTX) customers.Repository      { return f.customers }
func (f *fakeRepoManager) EmailLogs(dbx.DBTX) emaillogs.Repository      { return f.emailLogs }
func (f *fakeRepoManager) Templates(dbx.DBTX) templates.Repository      { return f.templates }

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int64

	getErr    error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) put(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	}
	f.byName[u.Username] = &u
	return &u
}

// snapshot returns a copy of the stored user.
func (f *fakeUsersRepo) snapshot(username string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byName[username]
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byName {
		if x.Username == u.Username || x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byName[u.Username] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByUsernameForUpdate(ctx context.Context, username string) (*models.User, error) {
	return f.GetByUsername(ctx, username)
}

func (f *fakeUsersRepo) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.User
	for _, u := range f.byName {
		if u.IsActive && strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) {
			items = append(items, *u)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Username < items[j].Username })
	return &models.Page[models.User]{Items: items, TotalCount: len(items), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, x := range f.byName {
		if x.ID == u.ID {
			delete(f.byName, name)
			cp := *u
			cp.PasswordHash = x.PasswordHash
			f.byName[u.Username] = &cp
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateLoginState(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	x, ok := f.byName[u.Username]
	if !ok {
		return common.ErrorNotFound
	}
	x.FailedLoginAttempts = u.FailedLoginAttempts
	x.LockoutEnd = u.LockoutEnd
	x.LastLogin = u.LastLogin
	return nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) SoftDelete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			u.IsActive = false
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- roles ---

type fakeRolesRepo struct {
	byID   map[int64]*models.Role
	nextID int64
	delErr error
}

func (f *fakeRolesRepo) Create(ctx context.Context, r *models.Role) (*models.Role, error) {
	for _, x := range f.byID {
		if x.Name == r.Name {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.byID[r.ID] = &cp
	return r, nil
}

func (f *fakeRolesRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRolesRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	for _, r := range f.byID {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRolesRepo) List(ctx context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRolesRepo) Delete(ctx context.Context, id int64) error {
	if f.delErr != nil {
		return f.delErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- customers ---

type fakeCustomersRepo struct {
	byID   map[int64]*models.Customer
	nextID int64
	getErr map[int64]error
}

func (f *fakeCustomersRepo) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return c, nil
}

func (f *fakeCustomersRepo) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomersRepo) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.Customer], error) {
	var items []models.Customer
	for _, c := range f.byID {
		if c.IsActive {
			items = append(items, *c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &models.Page[models.Customer]{Items: items, TotalCount: len(items), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeCustomersRepo) Update(ctx context.Context, c *models.Customer) error {
	if _, ok := f.byID[c.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomersRepo) SoftDelete(ctx context.Context, id int64) error {
	c, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.IsActive = false
	return nil
}

// --- email logs ---

type fakeEmailLogsRepo struct {
	entries []models.EmailLog
	calls   int
	// failOn maps the 1-based Create call number to the error it returns.
	failOn   map[int]error
	listErr  error
	statuses map[int64]models.EmailStatus
	messages map[int64]*string
	stats    []models.EmailStat
}

func (f *fakeEmailLogsRepo) Create(ctx context.Context, e *models.EmailLog) (*models.EmailLog, error) {
	f.calls++
	if err := f.failOn[f.calls]; err != nil {
		return nil, err
	}
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *e)
	return e, nil
}

func (f *fakeEmailLogsRepo) GetByID(ctx context.Context, id int64) (*models.EmailLog, error) {
	for _, e := range f.entries {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEmailLogsRepo) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.EmailLog], error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.Page[models.EmailLog]{Items: f.entries, TotalCount: len(f.entries), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeEmailLogsRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.EmailLog, error) {
	var out []models.EmailLog
	for _, e := range f.entries {
		if e.CustomerID != nil && *e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmailLogsRepo) ListAll(ctx context.Context) ([]models.EmailLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeEmailLogsRepo) Recent(ctx context.Context, limit int) ([]models.EmailLog, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeEmailLogsRepo) Stats(ctx context.Context) ([]models.EmailStat, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stats, nil
}

func (f *fakeEmailLogsRepo) UpdateStatus(ctx context.Context, id int64, status models.EmailStatus, msg *string) error {
	if _, err := f.GetByID(ctx, id); err != nil {
		return err
	}
	if f.statuses == nil {
		f.statuses = map[int64]models.EmailStatus{}
		f.messages = map[int64]*string{}
	}
	f.statuses[id] = status
	f.messages[id] = msg
	return nil
}

// --- templates ---

type fakeTemplatesRepo struct {
	byID map[string]*models.EmailTemplate
}

func (f *fakeTemplatesRepo) List(ctx context.Context) ([]models.EmailTemplate, error) {
	out := make([]models.EmailTemplate, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTemplatesRepo) GetByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplatesRepo) Save(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if old, ok := f.byID[t.ID]; ok {
		t.CreatedAt = old.CreatedAt
	} else {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	f.byID[t.ID] = &cp
	return t, nil
}

func (f *fakeTemplatesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

var errBoom = errors.New("boom")
