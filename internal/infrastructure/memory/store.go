// Package memory はDBを使わずに動作するインメモリの永続化層
// ローカル開発（STORAGE_BACKEND=memory）とテストで使う
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

var errForeignTx = errors.New("インメモリストアのトランザクションではありません")

type slotKey struct {
	date slot.Date
	slot slot.ID
}

// Store は全テーブルを保持する
// トランザクション中は mu を保持し続けるため、書き込みは直列化される
type Store struct {
	mu sync.Mutex

	bookings  map[string]*booking.Booking
	groups    map[string]*booking.Group
	confirmed map[slotKey]string
	closures  map[string]*closure.Closure
	pricing   map[slot.ID]*pricing.Config
	accounts  map[string]*account.Account

	// テストから障害を注入するためのフック
	failWith error
}

// NewStore は空のストアを作成する
// 料金表はマイグレーションと同じく 17:00〜22:00 を5000円のプライムタイム、それ以外を3500円で初期化する
func NewStore() *Store {
	s := &Store{
		bookings:  make(map[string]*booking.Booking),
		groups:    make(map[string]*booking.Group),
		confirmed: make(map[slotKey]string),
		closures:  make(map[string]*closure.Closure),
		pricing:   make(map[slot.ID]*pricing.Config, slot.SlotsPerDay),
		accounts:  make(map[string]*account.Account),
	}
	for _, id := range slot.All() {
		s.pricing[id] = seedPricing(id)
	}
	return s
}

const (
	seedPrice          = 3500
	seedPrimeTimePrice = 5000
	primeTimeFrom      = 17
	primeTimeTo        = 22
)

func seedPricing(id slot.ID) *pricing.Config {
	c := &pricing.Config{ID: newID(), TimeSlot: id, Price: seedPrice}
	if h := id.Hour(); h >= primeTimeFrom && h <= primeTimeTo {
		c.Price = seedPrimeTimePrice
		c.IsPrimeTime = true
	}
	return c
}

// FailWith は以降の読み書きを err で失敗させる（nil で解除）
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Ping はヘルスチェック用
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failWith
}

// Tx はストアのロックを保持したトランザクション
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

func (t *Tx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

// Rollback は記録した変更を逆順に取り消す（コミット済みなら何もしない）
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

// TxManager はストア全体をロックするトランザクションを発行する
type TxManager struct{ store *Store }

func NewTxManager(s *Store) *TxManager { return &TxManager{store: s} }

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	if err := m.store.failWith; err != nil {
		m.store.mu.Unlock()
		return nil, err
	}
	return &Tx{store: m.store}, nil
}

// withTx は tx が渡されていればそのまま、なければ単発のトランザクションで fn を実行する
func (s *Store) withTx(tx transaction.Tx, fn func(t *Tx) error) error {
	if tx != nil {
		t, ok := tx.(*Tx)
		if !ok || t.store != s {
			return errForeignTx
		}
		return fn(t)
	}
	s.mu.Lock()
	if s.failWith != nil {
		err := s.failWith
		s.mu.Unlock()
		return err
	}
	t := &Tx{store: s}
	if err := fn(t); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}

// read はロックを取得して fn を実行する
func (s *Store) read(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	return fn()
}

var _ transaction.Manager = (*TxManager)(nil)
