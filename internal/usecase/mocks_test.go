package usecase

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	purchases     repo.PurchaseRepository
	books         repo.BookRepository
	paymentEvents repo.PaymentEventRepository
	auditLogs     repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposMock) Purchases() repo.PurchaseRepository         { return r.purchases }
func (r *TxReposMock) Books() repo.BookRepository                 { return r.books }
func (r *TxReposMock) PaymentEvents() repo.PaymentEventRepository { return r.paymentEvents }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *OrderRepoMock) SetPaymentID(ctx context.Context, orderID int64, paymentID string) error {
	return m.Called(ctx, orderID, paymentID).Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Stats(ctx context.Context) (repo.OrderStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.OrderStats), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

// CreateIfAbsentは (user, format) ごとの状態を持つ簡易実装。
// webhookの再送テストで「既存行は変えない」を確かめるため。
type PurchaseRepoMock struct {
	mock.Mock
	rows map[[2]int64]*model.Purchase
}

func (m *PurchaseRepoMock) CreateIfAbsent(ctx context.Context, p *model.Purchase) (bool, error) {
	args := m.Called(ctx, p.UserID, p.BookFormatID)
	if args.Error(0) != nil {
		return false, args.Error(0)
	}
	if m.rows == nil {
		m.rows = map[[2]int64]*model.Purchase{}
	}
	key := [2]int64{p.UserID, p.BookFormatID}
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	cp := *p
	cp.ID = int64(len(m.rows) + 1)
	m.rows[key] = &cp
	return true, nil
}

func (m *PurchaseRepoMock) FindByIDForUser(ctx context.Context, purchaseID int64, userID int64) (model.Purchase, error) {
	args := m.Called(ctx, purchaseID, userID)
	p, _ := args.Get(0).(model.Purchase)
	return p, args.Error(1)
}

func (m *PurchaseRepoMock) IncrementDownloadIfAvailable(ctx context.Context, purchaseID int64) (bool, error) {
	args := m.Called(ctx, purchaseID)
	return args.Bool(0), args.Error(1)
}

func (m *PurchaseRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Purchase, error) {
	args := m.Called(ctx, userID)
	ps, _ := args.Get(0).([]model.Purchase)
	return ps, args.Error(1)
}

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) List(ctx context.Context, q repo.BookListQuery) ([]model.Book, error) {
	args := m.Called(ctx, q)
	bs, _ := args.Get(0).([]model.Book)
	return bs, args.Error(1)
}

func (m *BookRepoMock) FindByID(ctx context.Context, id int64) (model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) FindBySlug(ctx context.Context, slug string) (model.Book, error) {
	args := m.Called(ctx, slug)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) Create(ctx context.Context, b *model.Book) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 100
	}
	return args.Error(0)
}

func (m *BookRepoMock) Update(ctx context.Context, b model.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *BookRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BookRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookRepoMock) UpsertFormat(ctx context.Context, f *model.BookFormat) error {
	args := m.Called(ctx, f)
	if args.Error(0) == nil && f.ID == 0 {
		f.ID = 200
	}
	return args.Error(0)
}

func (m *BookRepoMock) FindFormatsByIDs(ctx context.Context, ids []int64) ([]model.BookFormat, error) {
	args := m.Called(ctx, ids)
	fs, _ := args.Get(0).([]model.BookFormat)
	return fs, args.Error(1)
}

type PaymentEventRepoMock struct{ mock.Mock }

func (m *PaymentEventRepoMock) Record(ctx context.Context, ev model.PaymentEvent) (model.PaymentEvent, bool, error) {
	args := m.Called(ctx, ev)
	pe, _ := args.Get(0).(model.PaymentEvent)
	return pe, args.Bool(1), args.Error(2)
}

func (m *PaymentEventRepoMock) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditLogRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	ls, _ := args.Get(0).([]model.AuditLog)
	return ls, args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *UserRepoMock) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// Ports
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(CheckoutSession)
	return s, args.Error(1)
}

type ParserMock struct{ mock.Mock }

func (m *ParserMock) ParseEvent(payload []byte, signature string) (PaymentEvent, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(PaymentEvent)
	return ev, args.Error(1)
}

// ログは捨てる
type nopLogger struct{}

func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}

// 共通のセットアップ
type fixture struct {
	tx            *TxManagerMock
	orders        *OrderRepoMock
	orderItems    *OrderItemRepoMock
	purchases     *PurchaseRepoMock
	books         *BookRepoMock
	paymentEvents *PaymentEventRepoMock
	auditLogs     *AuditLogRepoMock
}

func newFixture() *fixture {
	f := &fixture{
		orders:        new(OrderRepoMock),
		orderItems:    new(OrderItemRepoMock),
		purchases:     new(PurchaseRepoMock),
		books:         new(BookRepoMock),
		paymentEvents: new(PaymentEventRepoMock),
		auditLogs:     new(AuditLogRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:        f.orders,
		orderItems:    f.orderItems,
		purchases:     f.purchases,
		books:         f.books,
		paymentEvents: f.paymentEvents,
		auditLogs:     f.auditLogs,
	}}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	return f
}
