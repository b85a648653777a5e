package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"train-booking-backend/config"
	"train-booking-backend/controllers"
	"train-booking-backend/middleware"
)

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type Controllers struct {
	Booking   *controllers.BookingController
	Passenger *controllers.PassengerController
	Train     *controllers.TrainController
	User      *controllers.UserController
	Admin     *controllers.AdminController
}

func SetupRouter(cfg config.Config, ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	origins := parseCorsOrigins(cfg.CORSOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		bc, pc := ctl.Booking, ctl.Passenger
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bc.CreateBooking)
			bookings.GET("", bc.GetBookings)
			bookings.POST("/search", bc.SearchBookings)
			bookings.GET("/exists", bc.ExistsForUserTrainDate)

			bookings.GET("/user/:userId", bc.GetUserBookings)
			bookings.GET("/user/:userId/upcoming", bc.GetUpcomingBookings)
			bookings.GET("/user/:userId/past", bc.GetPastBookings)
			bookings.GET("/user/:userId/range", bc.GetUserBookingsInRange)
			bookings.GET("/user/:userId/journey-date/:date", bc.GetUserBookingsOnDate)
			bookings.GET("/user/:userId/statistics", bc.GetUserStatistics)
			bookings.GET("/user/:userId/count", bc.CountUserBookings)

			bookings.GET("/train/:trainId", bc.GetTrainBookings)
			bookings.GET("/train/:trainId/count", bc.CountTrainBookings)
			bookings.GET("/fare-type/:fareTypeId", bc.GetFareTypeBookings)
			bookings.GET("/status/:status", bc.GetBookingsByStatus)
			bookings.GET("/journey-date/:date", bc.GetBookingsByJourneyDate)
			bookings.GET("/journey-date/:date/count", bc.CountBookingsByJourneyDate)
			bookings.GET("/journey-date-range", bc.GetBookingsByJourneyDateRange)
			bookings.GET("/booking-date-range", bc.GetBookingsByBookingDateRange)
			bookings.GET("/route", bc.GetBookingsByRoute)

			bookings.GET("/search/source", bc.SearchBySource)
			bookings.GET("/search/destination", bc.SearchByDestination)
			bookings.GET("/search/train-name", bc.SearchByTrainName)
			bookings.GET("/search/username", bc.SearchByUsername)

			// :id routes after the static ones above
			bookings.GET("/:id", bc.GetBooking)
			bookings.GET("/:id/exists", bc.ExistsBooking)
			bookings.PUT("/:id/cancel", bc.CancelBooking)
			bookings.PATCH("/:id/status", bc.UpdateStatus)
			bookings.DELETE("/:id", bc.DeleteBooking)

			bookings.POST("/:id/passengers", pc.AddPassenger)
			bookings.GET("/:id/passengers", pc.GetBookingPassengers)
			bookings.GET("/:id/passengers/count", pc.CountBookingPassengers)
			bookings.GET("/:id/passengers/exists/:idProof", pc.PassengerInBooking)
		}

		passengers := api.Group("/passengers")
		{
			passengers.GET("/id-proof/:idProof", pc.GetByIDProof)
			passengers.GET("/search/name", pc.SearchByName)
			passengers.GET("/search/id-proof", pc.SearchByIDProof)
			passengers.GET("/age-range", pc.GetByAgeRange)
			passengers.GET("/gender/:gender", pc.GetByGender)
			passengers.GET("/gender/:gender/count", pc.CountByGender)
			passengers.GET("/statistics", pc.GetStatistics)
			passengers.GET("/exists/:idProof", pc.ExistsByIDProof)

			passengers.GET("/:id", pc.GetPassenger)
			passengers.PUT("/:id", pc.UpdatePassenger)
			passengers.DELETE("/:id", pc.DeletePassenger)
		}

		tc := ctl.Train
		trains := api.Group("/trains")
		{
			trains.POST("", tc.CreateTrain)
			trains.GET("", tc.GetTrains)
			trains.POST("/search", tc.SearchTrains)

			trains.GET("/name/:name", tc.GetTrainByName)
			trains.GET("/status/:status", tc.GetTrainsByStatus)
			trains.GET("/route", tc.GetTrainsByRoute)
			trains.GET("/source/:source", tc.GetTrainsBySource)
			trains.GET("/destination/:destination", tc.GetTrainsByDestination)
			trains.GET("/search/name", tc.SearchByName)
			trains.GET("/search/source", tc.SearchBySource)
			trains.GET("/search/destination", tc.SearchByDestination)
			trains.GET("/schedule/:day", tc.GetTrainsBySchedule)
			trains.GET("/schedule/:day/route", tc.GetTrainsByScheduleAndRoute)
			trains.GET("/available-seats", tc.GetTrainsWithSeats)
			trains.GET("/available-seats/route", tc.GetTrainsWithSeatsForRoute)
			trains.GET("/available", tc.GetAvailableTrains)
			trains.GET("/exists/name/:name", tc.ExistsByName)
			trains.GET("/exists/route", tc.ExistsByRoute)
			trains.GET("/stations", tc.GetStations)

			trains.GET("/:id", tc.GetTrain)
			trains.PUT("/:id", tc.UpdateTrain)
			trains.PUT("/:id/status", tc.UpdateTrainStatus)
			trains.DELETE("/:id", tc.DeleteTrain)
			trains.GET("/:id/fare-types", tc.GetFareTypes)
			trains.POST("/:id/fare-types", tc.AddFareType)
		}

		fareTypes := api.Group("/fare-types")
		{
			fareTypes.GET("/:id", tc.GetFareType)
			fareTypes.PUT("/:id", tc.UpdateFareType)
			fareTypes.DELETE("/:id", tc.DeleteFareType)
		}

		uc := ctl.User
		users := api.Group("/users")
		{
			users.POST("/register", uc.Register)
			users.POST("/login", uc.Login)
			users.GET("", uc.GetUsers)
			users.GET("/username/:username", uc.GetByUsername)
			users.GET("/email/:email", uc.GetByEmail)
			users.GET("/role/:role", uc.GetByRole)
			users.GET("/search/username", uc.SearchByUsername)
			users.GET("/search/email", uc.SearchByEmail)
			users.GET("/exists/username/:value", uc.ExistsByUsername)
			users.GET("/exists/email/:value", uc.ExistsByEmail)

			users.GET("/:id", uc.GetUser)
			users.PUT("/:id", uc.UpdateUser)
			users.PATCH("/:id/password", uc.ResetPassword)
			users.DELETE("/:id", uc.DeleteUser)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/dashboard", ctl.Admin.GetDashboard)
		}
	}

	return r
}
