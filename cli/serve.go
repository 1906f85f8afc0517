package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
	pawhavenhttp "github.com/pawhaven/pawhaven-tools/pawhaven/http"
)

type ServeCmd struct{}

func (cmd *ServeCmd) Run(env *Environment, client pawhavenhttp.Client, settings *pawhaven.Settings, cache *pawhaven.Cache) error {
	// Tokens presented to the dashboard are checked against the operator's
	// stored session; the role comes from the server-side user record.
	resolve := func(token string) (pawhaven.User, bool) {
		stored, err := settings.Token()
		if err != nil || stored == "" || token != stored {
			return pawhaven.User{}, false
		}

		user, err := currentUser(client, settings, cache)
		if err != nil {
			return pawhaven.User{}, false
		}

		return user, true
	}

	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/campaigns", pawhavenhttp.CampaignListHandler(client))
		api.GET("/campaigns/:id/overview", pawhavenhttp.CampaignOverviewHandler(client))
	}

	dashboard := api.Group("/dashboard", pawhavenhttp.RequireSession(resolve))
	{
		dashboard.GET("/stats", pawhavenhttp.StatsHandler(client))
		dashboard.GET("/my-donations", pawhavenhttp.MyDonationsHandler(client))
	}

	admin := dashboard.Group("/admin", pawhavenhttp.RequireAdmin())
	{
		admin.GET("/users", pawhavenhttp.UsersHandler(client))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %s\n", err)
		}
	}()
	log.Printf("Server running on :%v\n", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %s", err)
	}

	log.Println("Server exited gracefully")

	return nil
}
