package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawhaven/pawhaven-tools/pawhaven"
)

// SessionResolver maps a presented token to the signed-in user. The role
// it reports gates routes as a convenience only; the upstream API still
// authorizes every call itself.
type SessionResolver func(token string) (pawhaven.User, bool)

const userContextKey = "pawhaven.user"

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireSession redirects anonymous visitors to the login page, carrying
// the original path so they land back where they started after signing in.
func RequireSession(resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" {
			if cookie, err := c.Cookie("session"); err == nil {
				token = cookie
			}
		}

		if token != "" {
			if user, ok := resolve(token); ok {
				c.Set(userContextKey, user)
				c.Next()
				return
			}
		}

		c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAdmin sends authenticated non-admins back to their dashboard.
// It must be nested under RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (pawhaven.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return pawhaven.User{}, false
	}

	user, ok := value.(pawhaven.User)
	return user, ok
}

type CampaignOverview struct {
	pawhaven.Campaign
	PercentFunded float64             `json:"percentFunded"`
	DaysRemaining int                 `json:"daysRemaining"`
	Active        bool                `json:"active"`
	Donations     []pawhaven.Donation `json:"donations"`
}

func CampaignListHandler(client Client) func(*gin.Context) {
	return func(c *gin.Context) {
		campaigns, err := client.ListAllCampaigns()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, campaigns)
	}
}

func CampaignOverviewHandler(client Client) func(*gin.Context) {
	return func(c *gin.Context) {
		campaign, err := client.FindCampaign(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		donations, err := client.ListDonationsByCampaign(campaign.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		if donations == nil {
			donations = []pawhaven.Donation{}
		}

		now := time.Now()

		c.JSON(http.StatusOK, CampaignOverview{
			Campaign:      campaign,
			PercentFunded: campaign.PercentFunded(),
			DaysRemaining: campaign.DaysRemaining(now),
			Active:        campaign.Active(now),
			Donations:     donations,
		})
	}
}

func StatsHandler(client Client) func(*gin.Context) {
	return func(c *gin.Context) {
		stats, err := client.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func MyDonationsHandler(client Client) func(*gin.Context) {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)

		donations, err := client.ListDonationsByDonor(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		if donations == nil {
			donations = []pawhaven.Donation{}
		}

		c.JSON(http.StatusOK, donations)
	}
}

func UsersHandler(client Client) func(*gin.Context) {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)

		users, err := client.ListUsers(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}
