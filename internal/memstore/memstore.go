// Package memstore holds in-memory implementations of the repository interfaces.
// Transactions are serialized and roll back on error, so service tests observe the
// same all-or-nothing behavior as MongoDB.
package memstore

import (
	"context"
	bookingserrors "slotter/internal/bookings/errors"
	bookingsrepo "slotter/internal/bookings/repository"
	slotserrors "slotter/internal/slots/errors"
	slotsrepo "slotter/internal/slots/repository"
	userserrors "slotter/internal/users/errors"
	usersrepo "slotter/internal/users/repository"
	mongotx "slotter/pkg/db/mongo"
	"slotter/pkg/model"
	"slotter/pkg/timerange"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ slotsrepo.SlotRepository       = (*SlotRepository)(nil)
	_ bookingsrepo.BookingRepository = (*BookingRepository)(nil)
	_ usersrepo.UserRepository       = (*UserRepository)(nil)
	_ usersrepo.TokenRepository      = (*TokenRepository)(nil)
)

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	slots    map[string]model.Slot
	bookings map[string]model.Booking // keyed by slot id
	users    map[string]model.User
	tokens   map[string]model.Token
	seq      map[string]int
	next     int

	failures map[string]error
}

func New() *Store {
	return &Store{
		slots:    map[string]model.Slot{},
		bookings: map[string]model.Booking{},
		users:    map[string]model.User{},
		tokens:   map[string]model.Token{},
		seq:      map[string]int{},
		failures: map[string]error{},
	}
}

// Fail makes every later call of op return err. Ops are named "<repo>.<Method>",
// for example "slots.Create".
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

func (s *Store) Slots() *SlotRepository       { return &SlotRepository{s} }
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s} }
func (s *Store) Tokens() *TokenRepository     { return &TokenRepository{s} }

// AddUser stores a user directly and returns its id.
func (s *Store) AddUser(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.users[id] = model.User{ID: id, Username: username, Email: username, CreatedAt: time.Now().UTC()}
	return id
}

// AddSlot stores a slot directly, bypassing every check.
func (s *Store) AddSlot(ownerID string, start, end time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.slots[id] = model.Slot{ID: id, OwnerID: ownerID, StartTime: start, EndTime: end, CreatedAt: time.Now().UTC()}
	return id
}

// AddBooking stores a booking directly and returns its id.
func (s *Store) AddBooking(slotID, bookedBy, description string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.bookings[slotID] = model.Booking{ID: id, SlotID: slotID, BookedBy: bookedBy, Description: description, BookedAt: time.Now().UTC()}
	return id
}

func (s *Store) SlotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// AllSlots returns every stored slot in insertion order.
func (s *Store) AllSlots() []*model.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		slot := slot
		out = append(out, &slot)
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out
}

func (s *Store) Booking(slotID string) (*model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[slotID]
	return &b, ok
}

func (s *Store) newID() string {
	id := primitive.NewObjectID().Hex()
	s.next++
	s.seq[id] = s.next
	return id
}

func (s *Store) executeTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snapshot)
		s.mu.Unlock()
		return err
	}
	return nil
}

type state struct {
	slots    map[string]model.Slot
	bookings map[string]model.Booking
	users    map[string]model.User
	tokens   map[string]model.Token
}

func (s *Store) snapshot() state {
	return state{
		slots:    copyMap(s.slots),
		bookings: copyMap(s.bookings),
		users:    copyMap(s.users),
		tokens:   copyMap(s.tokens),
	}
}

func (s *Store) restore(st state) {
	s.slots = st.slots
	s.bookings = st.bookings
	s.users = st.users
	s.tokens = st.tokens
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// objectID resolves an _id the way MongoDB does: any hex casing names the same
// document. Other id-valued fields are plain strings and compare exactly.
func objectID(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

type SlotRepository struct{ s *Store }

func (r *SlotRepository) Create(_ context.Context, slot *model.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("slots.Create"); err != nil {
		return err
	}
	slot.ID = r.s.newID()
	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.slots[slot.ID] = *slot
	return nil
}

func (r *SlotRepository) CreateMany(_ context.Context, slots []*model.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("slots.CreateMany"); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, slot := range slots {
		slot.ID = r.s.newID()
		slot.CreatedAt = now
		r.s.slots[slot.ID] = *slot
	}
	return nil
}

func (r *SlotRepository) FindByID(_ context.Context, id string) (*model.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, valid := objectID(id)
	if !valid {
		return nil, slotserrors.ErrInvalidID
	}
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, slotserrors.ErrNotFound
	}
	return &slot, nil
}

func (r *SlotRepository) FindByOwner(_ context.Context, ownerID string) ([]*model.Slot, error) {
	return r.filter(func(slot model.Slot) bool { return slot.OwnerID == ownerID }, true), nil
}

func (r *SlotRepository) FindOverlapping(_ context.Context, ownerID string, start, end time.Time) ([]*model.Slot, error) {
	window := timerange.Range{Start: start, End: end}
	out := r.filter(func(slot model.Slot) bool {
		return slot.OwnerID == ownerID && timerange.Overlaps(slot.Range(), window)
	}, false)
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *SlotRepository) FindUpcomingByOwner(_ context.Context, ownerID string, after time.Time) ([]*model.Slot, error) {
	return r.filter(func(slot model.Slot) bool {
		return slot.OwnerID == ownerID && slot.StartTime.After(after)
	}, true), nil
}

func (r *SlotRepository) Touch(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, valid := objectID(id)
	if !valid {
		return slotserrors.ErrInvalidID
	}
	slot, ok := r.s.slots[id]
	if !ok {
		return slotserrors.ErrNotFound
	}
	slot.Revision++
	r.s.slots[id] = slot
	return nil
}

func (r *SlotRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("slots.Delete"); err != nil {
		return err
	}
	id, valid := objectID(id)
	if !valid {
		return slotserrors.ErrInvalidID
	}
	if _, ok := r.s.slots[id]; !ok {
		return slotserrors.ErrNotFound
	}
	delete(r.s.slots, id)
	return nil
}

func (r *SlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.s.executeTransaction(ctx, fn)
}

// filter returns matching slots, newest first when newest is set.
func (r *SlotRepository) filter(match func(model.Slot) bool, newest bool) []*model.Slot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Slot{}
	for _, slot := range r.s.slots {
		if match(slot) {
			slot := slot
			out = append(out, &slot)
		}
	}
	if newest {
		sort.Slice(out, func(i, j int) bool { return r.s.seq[out[i].ID] > r.s.seq[out[j].ID] })
	}
	return out
}

type BookingRepository struct{ s *Store }

func (r *BookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.Create"); err != nil {
		return err
	}
	if _, exists := r.s.bookings[booking.SlotID]; exists {
		return bookingserrors.ErrAlreadyBooked
	}
	booking.ID = r.s.newID()
	booking.BookedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.bookings[booking.SlotID] = *booking
	return nil
}

func (r *BookingRepository) FindBySlotID(_ context.Context, slotID string) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[slotID]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepository) FindBySlotIDs(_ context.Context, slotIDs []string) (map[string]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*model.Booking, len(slotIDs))
	for _, id := range slotIDs {
		if b, ok := r.s.bookings[id]; ok {
			b := b
			out[id] = &b
		}
	}
	return out, nil
}

func (r *BookingRepository) DeleteBySlotID(_ context.Context, slotID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[slotID]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(r.s.bookings, slotID)
	return nil
}

func (r *BookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.s.executeTransaction(ctx, fn)
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return userserrors.ErrAlreadyExists
		}
	}
	user.ID = r.s.newID()
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, valid := objectID(id)
	if !valid {
		return nil, userserrors.ErrInvalidID
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (r *UserRepository) LockSchedule(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, valid := objectID(id)
	if !valid {
		return userserrors.ErrInvalidID
	}
	u, ok := r.s.users[id]
	if !ok {
		return userserrors.ErrNotFound
	}
	u.ScheduleRevision++
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.s.executeTransaction(ctx, fn)
}

type TokenRepository struct{ s *Store }

func (r *TokenRepository) Create(_ context.Context, token *model.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tokens.Create"); err != nil {
		return err
	}
	for _, t := range r.s.tokens {
		if t.UserID == token.UserID {
			return userserrors.ErrAlreadyExists
		}
	}
	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.tokens[token.Key] = *token
	return nil
}

func (r *TokenRepository) FindByKey(_ context.Context, key string) (*model.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("tokens.FindByKey"); err != nil {
		return nil, err
	}
	t, ok := r.s.tokens[key]
	if !ok {
		return nil, userserrors.ErrTokenNotFound
	}
	return &t, nil
}

func (r *TokenRepository) FindByUserID(_ context.Context, userID string) (*model.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			t := t
			return &t, nil
		}
	}
	return nil, userserrors.ErrTokenNotFound
}
