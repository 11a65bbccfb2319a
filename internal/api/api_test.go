package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"corpintranet/portal/internal/chatbot"
	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"
	"corpintranet/portal/internal/service"
)

const cookieName = "portal_token"

var (
	employeeID = primitive.NewObjectID()
	adminID    = primitive.NewObjectID()
)

// Fakes embed the service interface; calling a method a test did not stub panics.

type fakeAuth struct {
	service.AuthService
}

func (fakeAuth) ParseToken(token string) (*service.Claims, error) {
	switch token {
	case "employee-token":
		return &service.Claims{UserID: employeeID.Hex(), Role: domain.RoleEmployee}, nil
	case "admin-token":
		return &service.Claims{UserID: adminID.Hex(), Role: domain.RoleAdmin}, nil
	}
	return nil, service.ErrInvalidToken
}

func (fakeAuth) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	if email == "ana@corp.example" && password == "correct-horse" {
		return "employee-token", &domain.User{ID: employeeID, Name: "Ana", Email: email, Role: domain.RoleEmployee}, nil
	}
	return "", nil, service.ErrAuthenticationFailed
}

func (fakeAuth) Me(_ context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return &domain.User{ID: userID, Name: "Ana", Role: domain.RoleEmployee}, nil
}

func (fakeAuth) TokenTTL() time.Duration { return time.Hour }

type fakeCafeteria struct {
	service.CafeteriaService
	now         time.Time
	submittedBy primitive.ObjectID
	submitted   []exchange.Selection
}

func (f *fakeCafeteria) Now() time.Time { return f.now }

func (f *fakeCafeteria) Submit(_ context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*service.SubmitResult, error) {
	f.submittedBy = userID
	f.submitted = selections
	return &service.SubmitResult{
		InsertedCount:      1,
		TotalPointsAwarded: 5,
		Rejected:           []service.RejectedDate{{Date: selections[len(selections)-1].Date, Reason: exchange.ReasonDeadlineExpired}},
	}, nil
}

func (f *fakeCafeteria) GetMonth(_ context.Context, _ primitive.ObjectID, year int, month time.Month, _ []exchange.Selection) (*service.MonthView, error) {
	if month < time.January || month > time.December {
		return nil, service.ErrInvalidInput
	}
	d := domain.NewDate(year, month, 1)
	return &service.MonthView{Days: []exchange.Decision{{Date: d, State: exchange.StateNone}}}, nil
}

type fakeReservations struct {
	service.ReservationService
}

func (fakeReservations) Create(context.Context, primitive.ObjectID, service.ReservationRequest) (*domain.Reservation, error) {
	return nil, service.ErrReservationConflict
}

type fakeMural struct {
	service.MuralService
}

func (fakeMural) DeletePost(_ context.Context, _, _ primitive.ObjectID, role domain.Role) error {
	if role != domain.RoleAdmin {
		return service.ErrForbidden
	}
	return nil
}

type fakeAdmin struct {
	service.AdminService
}

func (fakeAdmin) ListUsers(context.Context) ([]domain.User, error) {
	return []domain.User{{ID: employeeID, Name: "Ana", PasswordHash: "secret-hash"}}, nil
}

func newTestRouter() (*gin.Engine, *fakeCafeteria) {
	gin.SetMode(gin.TestMode)
	brt := time.FixedZone("BRT", -3*60*60)
	// 2025-09-01 02:30 UTC, still August in the cafeteria timezone.
	cafeteria := &fakeCafeteria{now: time.Date(2025, time.August, 31, 23, 30, 0, 0, brt)}
	bot := chatbot.New(map[string][]chatbot.Entry{
		"rh": {{Keywords: []string{"ferias"}, Answer: "Peça pelo portal do RH."}},
	}, []string{"rh"}, "Não entendi.")

	router := gin.New()
	SetupRoutes(router, Services{
		Auth:        fakeAuth{},
		Cafeteria:   cafeteria,
		Mural:       fakeMural{},
		Reservation: fakeReservations{},
		Admin:       fakeAdmin{},
		Chatbot:     bot,
	}, CookieSettings{Name: cookieName, Secure: true})
	return router, cafeteria
}

func do(router *gin.Engine, method, path, body string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestRouter()

	tests := []struct {
		name  string
		setup func(*http.Request)
		want  int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, http.StatusUnauthorized},
		{"unknown token", bearer("forged"), http.StatusUnauthorized},
		{"bearer token", bearer("employee-token"), http.StatusOK},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: "employee-token"})
		}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodGet, "/api/v1/me", "", tt.setup)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, _ := newTestRouter()

	w := do(router, http.MethodGet, "/api/v1/admin/users", "", bearer("employee-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodGet, "/api/v1/admin/users", "", bearer("admin-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ana"`)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router, _ := newTestRouter()

	w := do(router, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@corp.example","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "employee-token", resp.Token)
	assert.Equal(t, employeeID.Hex(), resp.User.ID)

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, cookieName+"=employee-token")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")

	w = do(router, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@corp.example","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := newTestRouter()
	w := do(router, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestSubmitExchanges(t *testing.T) {
	router, cafeteria := newTestRouter()

	body := `{"selections":[
		{"date":"2025-08-18","originalProtein":"Frango","newProtein":"Omelete"},
		{"date":"2025-08-14","originalProtein":"Frango","newProtein":"Ovo cozido"}
	]}`
	w := do(router, http.MethodPost, "/api/v1/cafeteria/exchanges", body, bearer("employee-token"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, employeeID, cafeteria.submittedBy)
	require.Len(t, cafeteria.submitted, 2)
	assert.Equal(t, domain.NewDate(2025, time.August, 18), cafeteria.submitted[0].Date)
	assert.Equal(t, domain.ProteinOmelete, cafeteria.submitted[0].NewProtein)

	var result service.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 5, result.TotalPointsAwarded)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, exchange.ReasonDeadlineExpired, result.Rejected[0].Reason)

	w = do(router, http.MethodPost, "/api/v1/cafeteria/exchanges", `{"selections":[{"date":"18/08/2025"}]}`, bearer("employee-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMonth(t *testing.T) {
	router, _ := newTestRouter()

	w := do(router, http.MethodGet, "/api/v1/cafeteria/month?year=2025&month=8", "", bearer("employee-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2025-08-01"`)
	assert.Contains(t, w.Body.String(), `"state":"NONE"`)

	w = do(router, http.MethodGet, "/api/v1/cafeteria/month?year=2025&month=13", "", bearer("employee-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMonthDefaultsToCafeteriaClock(t *testing.T) {
	router, _ := newTestRouter()

	w := do(router, http.MethodGet, "/api/v1/cafeteria/month", "", bearer("employee-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2025-08-01"`)
}

func TestReservationConflictIs409(t *testing.T) {
	router, _ := newTestRouter()
	body := `{"kind":"room","resource":"Sala 1","start":"2025-08-20T09:00:00-03:00","end":"2025-08-20T10:00:00-03:00"}`

	w := do(router, http.MethodPost, "/api/v1/reservations", body, bearer("employee-token"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPost, "/api/v1/reservations", strings.Replace(body, "room", "parking", 1), bearer("employee-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePost(t *testing.T) {
	router, _ := newTestRouter()
	path := "/api/v1/mural/posts/" + primitive.NewObjectID().Hex()

	w := do(router, http.MethodDelete, path, "", bearer("employee-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodDelete, path, "", bearer("admin-token"))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodDelete, "/api/v1/mural/posts/not-an-id", "", bearer("admin-token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatbotAsk(t *testing.T) {
	router, _ := newTestRouter()

	w := do(router, http.MethodPost, "/api/v1/chatbot/ask", `{"message":"Quero tirar férias"}`, bearer("employee-token"))
	require.Equal(t, http.StatusOK, w.Code)

	var reply chatbot.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.True(t, reply.Matched)
	assert.Equal(t, "Peça pelo portal do RH.", reply.Answer)
}
