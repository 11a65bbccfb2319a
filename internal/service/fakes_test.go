package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	cp := *user
	cp.ID = primitive.NewObjectID()
	cp.Email = strings.ToLower(cp.Email)
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id primitive.ObjectID, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) LinkGoogle(_ context.Context, id primitive.ObjectID, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GoogleID = googleID
	return nil
}

func (r *fakeUserRepo) add(name, email string) *domain.User {
	id, _ := r.Create(context.Background(), &domain.User{Name: name, Email: email, Role: domain.RoleEmployee})
	u, _ := r.GetByID(context.Background(), id)
	return u
}

type fakeMenuRepo struct {
	days map[domain.Date]domain.MenuDay
	err  error
}

func newFakeMenuRepo(days ...domain.MenuDay) *fakeMenuRepo {
	r := &fakeMenuRepo{days: map[domain.Date]domain.MenuDay{}}
	for _, d := range days {
		r.days[d.Date] = d
	}
	return r
}

func (r *fakeMenuRepo) UpsertMany(_ context.Context, days []domain.MenuDay) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, d := range days {
		r.days[d.Date] = d
	}
	return len(days), nil
}

func (r *fakeMenuRepo) GetRange(_ context.Context, from, to domain.Date) ([]domain.MenuDay, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.MenuDay{}
	for d, day := range r.days {
		if !d.Before(from) && !d.After(to) {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type exchangeKey struct {
	user primitive.ObjectID
	date domain.Date
}

type fakeExchangeRepo struct {
	records  map[exchangeKey]domain.Exchange
	failOn   map[domain.Date]bool
	errQueue []error // returned, one per call, before any write
	calls    int
}

func newFakeExchangeRepo() *fakeExchangeRepo {
	return &fakeExchangeRepo{records: map[exchangeKey]domain.Exchange{}, failOn: map[domain.Date]bool{}}
}

func (r *fakeExchangeRepo) GetByUserAndRange(_ context.Context, userID primitive.ObjectID, from, to domain.Date) ([]domain.Exchange, error) {
	out := []domain.Exchange{}
	for k, e := range r.records {
		if k.user == userID && !k.date.Before(from) && !k.date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExchangeRepo) UpsertMany(_ context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*repository.UpsertResult, error) {
	r.calls++
	if len(r.errQueue) > 0 {
		err := r.errQueue[0]
		r.errQueue = r.errQueue[1:]
		return nil, err
	}
	res := &repository.UpsertResult{Failed: map[domain.Date]error{}}
	for _, sel := range selections {
		if r.failOn[sel.Date] {
			res.Failed[sel.Date] = repository.ErrUpdateFailed
			continue
		}
		k := exchangeKey{userID, sel.Date}
		_, existed := r.records[k]
		r.records[k] = domain.Exchange{
			UserID:          userID,
			Date:            sel.Date,
			OriginalProtein: sel.OriginalProtein,
			NewProtein:      sel.NewProtein,
		}
		if existed {
			res.Updated = append(res.Updated, sel.Date)
		} else {
			res.Inserted = append(res.Inserted, sel.Date)
		}
	}
	return res, nil
}

func (r *fakeExchangeRepo) Tally(_ context.Context, from, to domain.Date) ([]domain.ExchangeTally, error) {
	counts := map[domain.Date]map[domain.Protein]int{}
	for k, e := range r.records {
		if k.date.Before(from) || k.date.After(to) {
			continue
		}
		if counts[k.date] == nil {
			counts[k.date] = map[domain.Protein]int{}
		}
		counts[k.date][e.NewProtein]++
	}
	out := []domain.ExchangeTally{}
	for d, byProtein := range counts {
		for p, n := range byProtein {
			out = append(out, domain.ExchangeTally{Date: d, NewProtein: p, Count: n})
		}
	}
	return out, nil
}

type fakePointsRepo struct {
	entries []domain.PointsEntry
	totals  map[primitive.ObjectID]int
	err     error
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{totals: map[primitive.ObjectID]int{}}
}

func (r *fakePointsRepo) Award(_ context.Context, entry domain.PointsEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	r.totals[entry.UserID] += entry.Amount
	return nil
}

func (r *fakePointsRepo) History(_ context.Context, userID primitive.ObjectID, _ int) ([]domain.PointsEntry, error) {
	out := []domain.PointsEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakePointsRepo) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	out := []domain.LeaderboardEntry{}
	for id, pts := range r.totals {
		out = append(out, domain.LeaderboardEntry{UserID: id, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[primitive.ObjectID]*domain.Post{}}
}

func (r *fakePostRepo) Create(_ context.Context, post *domain.Post) (primitive.ObjectID, error) {
	if post.AuthorID.IsZero() || (post.Content == "" && post.ImageKey == "") {
		return primitive.NilObjectID, repository.ErrInvalidPost
	}
	cp := *post
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	r.posts[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	return &cp, nil
}

func (r *fakePostRepo) List(_ context.Context, limit int, _ *time.Time) ([]domain.Post, error) {
	out := []domain.Post{}
	for _, p := range r.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) SetLike(_ context.Context, postID, userID primitive.ObjectID, liked bool) (bool, error) {
	p, ok := r.posts[postID]
	if !ok {
		return false, repository.ErrNotFound
	}
	has := p.LikedBy(userID)
	switch {
	case liked && !has:
		p.Likes = append(p.Likes, userID)
		return true, nil
	case !liked && has:
		kept := p.Likes[:0]
		for _, id := range p.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.Likes = kept
		return true, nil
	}
	return false, nil
}

func (r *fakePostRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment domain.Comment) error {
	p, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeReservationRepo struct {
	items map[primitive.ObjectID]*domain.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: map[primitive.ObjectID]*domain.Reservation{}}
}

func (r *fakeReservationRepo) Create(_ context.Context, res *domain.Reservation) (primitive.ObjectID, error) {
	cp := *res
	cp.ID = primitive.NewObjectID()
	r.items[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Reservation, error) {
	res, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) FindOverlapping(_ context.Context, kind domain.ReservationKind, resource string, start, end time.Time) ([]domain.Reservation, error) {
	probe := &domain.Reservation{Start: start, End: end}
	out := []domain.Reservation{}
	for _, res := range r.items {
		if res.Kind == kind && res.Resource == resource && res.Overlaps(probe) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListRange(_ context.Context, kind domain.ReservationKind, start, end time.Time) ([]domain.Reservation, error) {
	probe := &domain.Reservation{Start: start, End: end}
	out := []domain.Reservation{}
	for _, res := range r.items {
		if (kind == "" || res.Kind == kind) && res.Overlaps(probe) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?put", nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?get", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (g *fakeGoogle) Verify(_ context.Context, _ string) (*GoogleIdentity, error) {
	return g.identity, g.err
}
