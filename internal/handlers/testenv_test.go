package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trishadairy/storefront/internal/catalog"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/models"
	"github.com/trishadairy/storefront/internal/order"
	"github.com/trishadairy/storefront/internal/session"
)

// memStore is an in-memory session.Store for handler tests; same contract
// as the Redis store, minus the TTL.
type memStore struct {
	states map[string]*session.State
}

func newMemStore() *memStore {
	return &memStore{states: map[string]*session.State{}}
}

func (m *memStore) Get(_ context.Context, token string) (*session.State, error) {
	if s, ok := m.states[token]; ok {
		clone := *s
		clone.Cart = append(clone.Cart[:0:0], s.Cart...)
		return &clone, nil
	}
	return &session.State{}, nil
}

func (m *memStore) Mutate(ctx context.Context, token string, fn func(*session.State) error) error {
	s, err := m.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	m.states[token] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, token string) error {
	delete(m.states, token)
	return nil
}

type recordedEvent struct {
	Topic string
	Event map[string]any
}

type recordingProducer struct {
	events []recordedEvent
}

func (p *recordingProducer) PublishEvent(_ context.Context, topic, _ string, event interface{}) error {
	p.events = append(p.events, recordedEvent{Topic: topic, Event: event.(map[string]any)})
	return nil
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *memStore
	Events   *recordingProducer

	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Products  *ProductHandler
	Contact   *ContactHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Order{},
		&models.OrderItem{}, &models.ContactMessage{},
	))

	sessions := newMemStore()
	events := &recordingProducer{}
	reader := &catalog.Reader{DB: db}
	writer := &order.Writer{DB: db}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Sessions: sessions,
		Events:   events,

		Auth:      &AuthHandler{DB: db, Sessions: sessions, SessionTTL: time.Hour, Producer: events},
		Dashboard: &DashboardHandler{DB: db, Orders: writer},
		Cart:      &CartHandler{Catalog: reader, Sessions: sessions, Producer: events},
		Checkout:  &CheckoutHandler{Writer: writer, Catalog: reader, Sessions: sessions, Producer: events},
		Products:  &ProductHandler{Catalog: reader},
		Contact:   &ContactHandler{DB: db},
	}
}

// invoke runs a handler behind the session middleware, the way the router
// wires it.
func (env *testEnv) invoke(h echo.HandlerFunc, c echo.Context) error {
	return authmw.Sessions(env.Sessions)(h)(c)
}

// invokeGated additionally applies the login gate.
func (env *testEnv) invokeGated(h echo.HandlerFunc, c echo.Context) error {
	return authmw.Sessions(env.Sessions)(authmw.RequireLogin(h))(c)
}

func (env *testEnv) doFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) doJSONRequest(method, path string, payload interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) seedProducts() {
	require.NoError(env.T, env.DB.Create(&models.Product{Name: "Milk", Price: 20, Stock: 10, Category: "dairy"}).Error)
	require.NoError(env.T, env.DB.Create(&models.Product{Name: "Curd", Price: 34, Stock: 10, Category: "dairy"}).Error)
}

// register creates an account through the handler and returns its session
// cookie.
func (env *testEnv) register(userName string) *http.Cookie {
	env.T.Helper()

	form := url.Values{
		"user_name":        {userName},
		"email":            {userName + "@example.com"},
		"phone":            {"9999999999"},
		"city":             {"Pune"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	}
	rec, c := env.doFormRequest(http.MethodPost, "/register", form)
	require.NoError(env.T, env.invoke(env.Auth.Register, c))
	require.Equal(env.T, http.StatusSeeOther, rec.Code)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	env.T.Fatal("no session cookie issued")
	return nil
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
	return he
}
