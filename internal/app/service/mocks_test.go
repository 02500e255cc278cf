package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
	"marketplace/internal/platform/payment"
	"math"
	"sort"
	"sync"
)

// --- in-memory repositories ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return common.ErrConflict
	}
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*model.Post{}}
}

func (r *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return common.ErrNotFound
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) ListNewestFirst(ctx context.Context) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := make([]model.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	// The real ledger column is NUMERIC(12,2); emulate its two-decimal
	// round-trip so equality in FindMatch behaves like Postgres.
	copied.Amount = math.Round(copied.Amount*100) / 100
	r.payments = append(r.payments, copied)
	return nil
}

func (r *fakePaymentRepo) FindMatch(ctx context.Context, postID, buyerEmail string, amount float64, quantity int) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		p := r.payments[i]
		if p.PostID == postID && p.BuyerEmail == buyerEmail && p.Amount == amount && p.Quantity == quantity {
			copied := p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakePaymentRepo) ListByPost(ctx context.Context, postID string) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Payment{}
	for _, p := range r.payments {
		if p.PostID == postID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	notes []model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, tx *sql.Tx, note *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipient string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Notification{}
	for _, note := range r.notes {
		if note.Recipient == recipient {
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes[i].Read = true
			copied := r.notes[i]
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- fake checkout provider ---

type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*payment.Session
	created  []payment.CreateSessionInput
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payment.Session{}}
}

func (p *fakeProvider) PublishableKey() string { return "pk_test_fake" }

func (p *fakeProvider) CreateSession(ctx context.Context, in payment.CreateSessionInput) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, in)
	sess := &payment.Session{
		ID:               "cs_test_" + in.Metadata["postId"],
		AmountTotalCents: in.UnitAmountCents * in.Quantity,
		Metadata:         in.Metadata,
	}
	p.sessions[sess.ID] = sess
	return sess, nil
}

func (p *fakeProvider) GetSession(ctx context.Context, id string) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[id]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	return sess, nil
}

func (p *fakeProvider) addSession(sess *payment.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sess.ID] = sess
}

// --- fake session lock ---

type fakeLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: map[string]bool{}}
}

func (l *fakeLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[sessionID] {
		return false, nil
	}
	l.held[sessionID] = true
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context, sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, sessionID)
}

// --- no-op sql driver so BeginTx/Commit work without a database ---

type nopDriver struct{}

func (nopDriver) Open(name string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

var registerNopDriver sync.Once

func newNopDB() *sql.DB {
	registerNopDriver.Do(func() {
		sql.Register("nop", nopDriver{})
	})
	db, err := sql.Open("nop", "")
	if err != nil {
		panic(err)
	}
	return db
}
