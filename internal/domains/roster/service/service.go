package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/internal/domains/roster/repository"
)

// Enqueuer đẩy snapshot vào background queue (asynq) thay vì persist trực tiếp
type Enqueuer interface {
	EnqueueSnapshot(ctx context.Context, snapshot rosterModel.Snapshot) error
}

// RosterService là lớp ngoài của roster store cho HTTP/CLI.
// Mọi truy cập store đi qua roster.Guarded; change log được bảo vệ bởi cùng lock đó.
type RosterService struct {
	roster   *roster.Guarded
	repo     repository.Repository
	enqueuer Enqueuer
	logger   zerolog.Logger
	now      func() time.Time

	changes []rosterModel.Change
}

type Option func(*RosterService)

// WithEnqueuer bật async submit
func WithEnqueuer(e Enqueuer) Option {
	return func(s *RosterService) { s.enqueuer = e }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *RosterService) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *RosterService) { s.now = now }
}

func NewRosterService(store *roster.Store, repo repository.Repository, opts ...Option) *RosterService {
	s := &RosterService{
		roster: roster.NewGuarded(store),
		repo:   repo,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========================================
// QUERIES
// ========================================

func (s *RosterService) Summary() rosterModel.Summary {
	return s.Browse(rosterModel.Filter{})
}

// Browse trả về summary kèm các record qua filter, đọc trong cùng một lần lock
func (s *RosterService) Browse(filter rosterModel.Filter) rosterModel.Summary {
	search := strings.ToLower(filter.Search)

	var out rosterModel.Summary
	s.roster.View(func(st *roster.Store) {
		out.Count = st.Count()
		out.Pending = st.HasPendingChanges()
		out.Names = make([]string, st.Count())
		out.Matches = make([]rosterModel.Match, 0, st.Count())

		for i := range out.Names {
			name := st.Name(i)
			out.Names[i] = name

			subclass := st.Subclass(i)
			if !strings.Contains(strings.ToLower(name), search) {
				continue
			}
			if filter.Subclass != "" && subclass != filter.Subclass {
				continue
			}
			out.Matches = append(out.Matches, rosterModel.Match{
				Index:    i,
				Name:     name,
				Subclass: subclass,
				Health:   st.Health(i),
				IsFlying: st.IsFlying(i),
			})
		}
	})
	return out
}

// Subclasses trả về các subclass khác rỗng, không trùng, đã sort (cho filter dropdown)
func (s *RosterService) Subclasses() []string {
	seen := make(map[string]struct{})
	s.roster.View(func(st *roster.Store) {
		for i := 0; i < st.Count(); i++ {
			if sub := st.Subclass(i); sub != "" {
				seen[sub] = struct{}{}
			}
		}
	})

	out := make([]string, 0, len(seen))
	for sub := range seen {
		out = append(out, sub)
	}
	sort.Strings(out)
	return out
}

// NameIndex trả về bản copy của name index cùng số record
func (s *RosterService) NameIndex() ([]byte, int) {
	var (
		buf   []byte
		count int
	)
	s.roster.View(func(st *roster.Store) {
		buf = append([]byte(nil), st.NameIndex()...)
		count = st.Count()
	})
	return buf, count
}

func (s *RosterService) Character(index int) (model.Character, error) {
	var (
		c   model.Character
		err error
	)
	s.roster.View(func(st *roster.Store) {
		if err = checkIndex(st, index); err == nil {
			c = st.Character(index)
		}
	})
	return c, err
}

// Attacks trả về attacks blob và số attack của record index
func (s *RosterService) Attacks(index int) ([]byte, int, error) {
	var (
		blob  []byte
		count int
		err   error
	)
	s.roster.View(func(st *roster.Store) {
		if err = checkIndex(st, index); err == nil {
			blob = st.AttacksBlob(index)
			count = st.AttackCount(index)
		}
	})
	return blob, count, err
}

// Export trả về pretty JSON của cả roster
func (s *RosterService) Export() string {
	var doc string
	s.roster.View(func(st *roster.Store) { doc = st.SerializeRoster() })
	return doc
}

func (s *RosterService) Characters() []model.Character {
	var list []model.Character
	s.roster.View(func(st *roster.Store) { list = st.Characters() })
	return list
}

// Changes trả về change log chưa submit
func (s *RosterService) Changes() []rosterModel.Change {
	var out []rosterModel.Change
	s.roster.View(func(*roster.Store) {
		out = append([]rosterModel.Change(nil), s.changes...)
	})
	return out
}

// Latest trả về snapshot đã submit gần nhất
func (s *RosterService) Latest(ctx context.Context) (*rosterModel.Snapshot, error) {
	return s.repo.LoadLatest(ctx)
}

// ========================================
// MUTATIONS
// ========================================

// Add thêm record từ raw JSON, trả về record đã decode và index của nó
func (s *RosterService) Add(raw string) (model.Character, int, error) {
	var (
		c     model.Character
		index int
	)
	err := s.roster.Mutate(func(st *roster.Store) error {
		if err := st.Append(raw); err != nil {
			return err
		}
		index = st.Count() - 1
		c = st.Character(index)
		s.record(rosterModel.ChangeAdd, index, c.Name)
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("roster: add rejected")
		return model.Character{}, 0, err
	}
	s.logger.Debug().Str("name", c.Name).Int("index", index).Msg("roster: character added")
	return c, index, nil
}

func (s *RosterService) Update(index int, raw string) (model.Character, error) {
	var c model.Character
	err := s.roster.Mutate(func(st *roster.Store) error {
		if err := st.Update(index, raw); err != nil {
			return err
		}
		c = st.Character(index)
		s.record(rosterModel.ChangeUpdate, index, c.Name)
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Int("index", index).Msg("roster: update rejected")
		return model.Character{}, err
	}
	s.logger.Debug().Str("name", c.Name).Int("index", index).Msg("roster: character updated")
	return c, nil
}

// Delete xóa record index. Store coi index sai là no-op;
// ở đây báo ErrIndexOutOfRange để HTTP trả 404.
func (s *RosterService) Delete(index int) (string, error) {
	var name string
	err := s.roster.Mutate(func(st *roster.Store) error {
		if err := checkIndex(st, index); err != nil {
			return err
		}
		name = st.Name(index)
		st.Delete(index)
		s.record(rosterModel.ChangeDelete, index, name)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug().Str("name", name).Int("index", index).Msg("roster: character deleted")
	return name, nil
}

// Submit đóng gói roster hiện tại thành snapshot, persist (hoặc enqueue)
// rồi clear pending flag và change log. Persist fail => roster vẫn pending.
func (s *RosterService) Submit(ctx context.Context) (*rosterModel.Snapshot, error) {
	var snapshot rosterModel.Snapshot
	err := s.roster.Mutate(func(st *roster.Store) error {
		if !st.HasPendingChanges() && len(s.changes) == 0 {
			return ErrNothingToSubmit
		}

		submission := buildSubmission(s.changes, st)
		snapshot = rosterModel.Snapshot{
			ID:        uuid.NewString(),
			Document:  st.SerializeRoster(),
			Title:     submission.Title,
			Message:   submission.Message,
			Body:      submission.Body,
			Count:     st.Count(),
			CreatedAt: s.now().UTC(),
		}

		if err := s.persist(ctx, snapshot); err != nil {
			return err
		}

		st.MarkSubmitted()
		s.changes = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("snapshot_id", snapshot.ID).
		Int("count", snapshot.Count).
		Bool("async", s.enqueuer != nil).
		Msg("roster: submitted")
	return &snapshot, nil
}

// Prune giữ lại keep snapshot mới nhất
func (s *RosterService) Prune(ctx context.Context, keep int) (int, error) {
	return s.repo.Prune(ctx, keep)
}

func (s *RosterService) persist(ctx context.Context, snapshot rosterModel.Snapshot) error {
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("enqueue snapshot: %w", err)
		}
		return nil
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// record phải được gọi trong Mutate
func (s *RosterService) record(kind rosterModel.ChangeKind, index int, name string) {
	s.changes = append(s.changes, rosterModel.Change{
		Kind:  kind,
		Index: index,
		Name:  name,
		At:    s.now().UTC(),
	})
}

func checkIndex(st *roster.Store, index int) error {
	if index < 0 || index >= st.Count() {
		return &roster.IndexOutOfRangeError{Index: index, Count: st.Count()}
	}
	return nil
}
