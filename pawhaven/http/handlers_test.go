package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
)

type handlerStub struct {
	Client

	campaign  pawhaven.Campaign
	donations []pawhaven.Donation
	stats     pawhaven.Stats
}

func (s *handlerStub) FindCampaign(string) (pawhaven.Campaign, error) {
	return s.campaign, nil
}

func (s *handlerStub) ListDonationsByCampaign(string) ([]pawhaven.Donation, error) {
	return s.donations, nil
}

func (s *handlerStub) Stats() (pawhaven.Stats, error) {
	return s.stats, nil
}

func (s *handlerStub) ListUsers(string) ([]pawhaven.User, error) {
	return []pawhaven.User{}, nil
}

func testResolver(users map[string]pawhaven.User) SessionResolver {
	return func(token string) (pawhaven.User, bool) {
		user, ok := users[token]
		return user, ok
	}
}

func newDashboardRouter(resolver SessionResolver, client Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	dashboard := router.Group("/dashboard", RequireSession(resolver))
	dashboard.GET("/stats", StatsHandler(client))

	admin := dashboard.Group("/admin", RequireAdmin())
	admin.GET("/users", UsersHandler(client))

	return router
}

func TestRequireSessionRedirectsAnonymousVisitorsToLogin(t *testing.T) {
	router := newDashboardRouter(testResolver(nil), &handlerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login?from=%2Fdashboard%2Fstats", recorder.Header().Get("Location"))
}

func TestRequireSessionAcceptsBearerTokens(t *testing.T) {
	resolver := testResolver(map[string]pawhaven.User{
		"tok-123": {Email: "dana@example.com", Role: pawhaven.RoleUser},
	})
	router := newDashboardRouter(resolver, &handlerStub{stats: pawhaven.Stats{TotalPets: 7}})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	request.Header.Set("Authorization", "Bearer tok-123")

	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var stats pawhaven.Stats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.TotalPets)
}

func TestRequireSessionAcceptsSessionCookies(t *testing.T) {
	resolver := testResolver(map[string]pawhaven.User{
		"tok-123": {Email: "dana@example.com", Role: pawhaven.RoleUser},
	})
	router := newDashboardRouter(resolver, &handlerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	request.AddCookie(&http.Cookie{Name: "session", Value: "tok-123"})

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireSessionRejectsUnknownTokens(t *testing.T) {
	router := newDashboardRouter(testResolver(nil), &handlerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	request.Header.Set("Authorization", "Bearer bogus")

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Location"), "/login?from=")
}

func TestRequireAdminSendsNonAdminsToTheirDashboard(t *testing.T) {
	resolver := testResolver(map[string]pawhaven.User{
		"tok-user": {Email: "dana@example.com", Role: pawhaven.RoleUser},
	})
	router := newDashboardRouter(resolver, &handlerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/admin/users", nil)
	request.Header.Set("Authorization", "Bearer tok-user")

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/dashboard", recorder.Header().Get("Location"))
}

func TestRequireAdminLetsAdminsThrough(t *testing.T) {
	resolver := testResolver(map[string]pawhaven.User{
		"tok-admin": {Email: "admin@example.com", Role: pawhaven.RoleAdmin},
	})
	router := newDashboardRouter(resolver, &handlerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/dashboard/admin/users", nil)
	request.Header.Set("Authorization", "Bearer tok-admin")

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCampaignOverviewDerivesProgress(t *testing.T) {
	gin.SetMode(gin.TestMode)

	stub := &handlerStub{
		campaign: pawhaven.Campaign{
			ID:              "camp-1",
			PetName:         "Biscuit",
			MaxDonation:     5000,
			CurrentDonation: 2500,
			LastDate:        time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
		},
	}

	router := gin.New()
	router.GET("/campaigns/:id/overview", CampaignOverviewHandler(stub))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/campaigns/camp-1/overview", nil)

	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var overview CampaignOverview
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &overview))
	assert.Equal(t, "Biscuit", overview.PetName)
	assert.Equal(t, float64(50), overview.PercentFunded)
	assert.True(t, overview.Active)
	assert.NotNil(t, overview.Donations, "an overview always carries a donations list")
}
