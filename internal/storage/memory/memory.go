// Package memory is an in-process transaction repository. Data lives only as
// long as the server process.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	nextID int64
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// NewFromFile seeds a store from lines of "amount,category". Blank lines and
// lines starting with # are skipped; the category is optional.
func NewFromFile(path string, now time.Time) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		amount, category, _ := strings.Cut(line, ",")
		d, err := core.NewDraft(amount, category)
		if err != nil {
			return nil, fmt.Errorf("seed line %d: %w", lineNo, err)
		}
		// spread seeded rows a minute apart so recency is well defined
		s.insert(d, now.Add(time.Duration(lineNo)*time.Minute))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return s, nil
}

func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Create(_ context.Context, d core.Draft, at time.Time) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(d, at), nil
}

func (s *Store) Update(_ context.Context, id int64, d core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	s.items[i].Amount = decimal.NewNullDecimal(d.Amount)
	s.items[i].Category = d.Category
	return s.items[i], nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Close() error { return nil }

// insert must be called with mu held, or before the store is shared.
func (s *Store) insert(d core.Draft, at time.Time) core.Transaction {
	t := core.Transaction{
		ID:        s.nextID,
		Amount:    decimal.NewNullDecimal(d.Amount),
		Category:  d.Category,
		CreatedAt: at.UTC(),
	}
	s.nextID++
	s.items = append(s.items, t)
	return t
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
