// Package memstore provides map-backed implementations of the service store
// interfaces for tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

// Products keeps insertion order so listings are deterministic.
type Products struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]models.Product
	Err   error
}

func NewProducts() *Products {
	return &Products{docs: map[primitive.ObjectID]models.Product{}}
}

func (s *Products) Insert(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Product{}, apperr.Persistence("insert product", s.Err)
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.docs[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

func (s *Products) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Product{}, apperr.Persistence("find product", s.Err)
	}
	p, ok := s.docs[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	return p, nil
}

func (s *Products) FindAll(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, apperr.Persistence("find products", s.Err)
	}
	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out, nil
}

func (s *Products) Save(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Product{}, apperr.Persistence("update product", s.Err)
	}
	if _, ok := s.docs[p.ID]; !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	s.docs[p.ID] = p
	return p, nil
}

func (s *Products) Delete(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Product{}, apperr.Persistence("delete product", s.Err)
	}
	p, ok := s.docs[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product")
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (s *Products) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

type Orders struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Order
	Err  error
}

func NewOrders() *Orders {
	return &Orders{docs: map[primitive.ObjectID]models.Order{}}
}

// Put stores an order as the checkout flow would.
func (s *Orders) Put(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.docs[o.ID] = o
	return o
}

func (s *Orders) FindAll(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, apperr.Persistence("find orders", s.Err)
	}
	return s.sorted(func(models.Order) bool { return true }), nil
}

func (s *Orders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.docs[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order")
	}
	return o, nil
}

func (s *Orders) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, apperr.Persistence("find orders", s.Err)
	}
	return s.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, at time.Time) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Order{}, apperr.Persistence("update order", s.Err)
	}
	o, ok := s.docs[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order")
	}
	o.Status = status
	o.UpdatedAt = at
	s.docs[id] = o
	return o, nil
}

func (s *Orders) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return apperr.NotFound("order")
	}
	delete(s.docs, id)
	return nil
}

func (s *Orders) CountByUser(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, apperr.Persistence("count orders", s.Err)
	}
	counts := map[string]int64{}
	for _, o := range s.docs {
		counts[o.UserID.Hex()]++
	}
	return counts, nil
}

func (s *Orders) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int64{}
	for _, o := range s.docs {
		counts[o.Status]++
	}
	return counts, nil
}

func (s *Orders) sorted(keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(s.docs))
	for _, o := range s.docs {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

type Users struct {
	mu   sync.Mutex
	docs []models.User
}

func NewUsers(users ...models.User) *Users {
	s := &Users{}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

func (s *Users) Put(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.docs = append(s.docs, u)
	return u
}

func (s *Users) FindAll(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.docs...), nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.docs {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user")
}

func (s *Users) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

type Carts struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Cart
}

func NewCarts() *Carts {
	return &Carts{docs: map[primitive.ObjectID]models.Cart{}}
}

func (s *Carts) Put(cart models.Cart) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	s.docs[cart.UserID] = cart
	return cart
}

func (s *Carts) FindByUser(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.docs[userID]
	if !ok {
		return models.Cart{}, apperr.NotFound("cart")
	}
	return cart, nil
}

type Admins struct {
	mu   sync.Mutex
	docs map[string]models.Admin
}

func NewAdmins() *Admins {
	return &Admins{docs: map[string]models.Admin{}}
}

func (s *Admins) FindByEmail(_ context.Context, email string) (models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.docs[email]
	if !ok {
		return models.Admin{}, apperr.NotFound("admin")
	}
	return a, nil
}

func (s *Admins) Insert(_ context.Context, a models.Admin) (models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[a.Email]; ok {
		return models.Admin{}, apperr.ErrEmailTaken
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.docs[a.Email] = a
	return a, nil
}

// Objects fakes an object store whose public URLs live under BaseURL.
// Keys listed in FailKeys fail to delete.
type Objects struct {
	mu       sync.Mutex
	BaseURL  string
	FailKeys map[string]bool
	Deleted  []string
	Attempts []string
}

func NewObjects(baseURL string) *Objects {
	return &Objects{BaseURL: strings.TrimRight(baseURL, "/"), FailKeys: map[string]bool{}}
}

func (o *Objects) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return fmt.Sprintf("https://signed.example.com/%s?content-type=%s&expires=%d",
		url.PathEscape(key), url.QueryEscape(contentType), int(ttl.Seconds())), nil
}

func (o *Objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Attempts = append(o.Attempts, key)
	if o.FailKeys[key] {
		return apperr.Upstream("delete object", errors.New("access denied"))
	}
	o.Deleted = append(o.Deleted, key)
	return nil
}

func (o *Objects) PublicURL(key string) string {
	return o.BaseURL + "/" + url.PathEscape(key)
}

func (o *Objects) KeyFromURL(rawURL string) (string, bool) {
	prefix := o.BaseURL + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (o *Objects) AttemptCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Attempts)
}
