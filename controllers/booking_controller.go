package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

type statusPayload struct {
	Status string `json:"status"`
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload services.CreateBookingInput
	if !bindJSON(c, &payload) {
		return
	}
	booking, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.ListBookings(c.Request.Context())
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.GetBooking(c.Request.Context(), id)
	reply(c, booking, err)
}

func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.CancelBooking(c.Request.Context(), id)
	reply(c, booking, err)
}

// UpdateStatus takes the status from the JSON body or the status query parameter.
func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		var payload statusPayload
		if !bindJSON(c, &payload) {
			return
		}
		status = payload.Status
	}
	booking, err := ctrl.BookingSvc.UpdateBookingStatus(c.Request.Context(), id, status)
	reply(c, booking, err)
}

func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.BookingSvc.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

func (ctrl *BookingController) ExistsBooking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	exists, err := ctrl.BookingSvc.ExistsBooking(c.Request.Context(), id)
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *BookingController) ExistsForUserTrainDate(c *gin.Context) {
	userID, ok := uintQuery(c, "userId")
	if !ok {
		return
	}
	trainID, ok := uintQuery(c, "trainId")
	if !ok {
		return
	}
	date, ok := requireQuery(c, "journeyDate")
	if !ok {
		return
	}
	exists, err := ctrl.BookingSvc.ExistsForUserTrainDate(c.Request.Context(), userID, trainID, date)
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *BookingController) SearchBookings(c *gin.Context) {
	var criteria services.BookingSearchCriteria
	if !bindJSON(c, &criteria) {
		return
	}
	bookings, err := ctrl.BookingSvc.SearchBookings(c.Request.Context(), criteria)
	reply(c, bookings, err)
}

// ---------------------------
// per user
// ---------------------------

func (ctrl *BookingController) GetUserBookings(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		bookings, err := ctrl.BookingSvc.BookingsByUserAndStatus(ctx, userID, status)
		reply(c, bookings, err)
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByUser(ctx, userID)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetUpcomingBookings(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.UpcomingBookings(c.Request.Context(), userID)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetPastBookings(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.PastBookings(c.Request.Context(), userID)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetUserBookingsInRange(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	from, ok := requireQuery(c, "from")
	if !ok {
		return
	}
	to, ok := requireQuery(c, "to")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByUserAndJourneyDateRange(c.Request.Context(), userID, from, to)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetUserBookingsOnDate(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByUserAndJourneyDate(c.Request.Context(), userID, c.Param("date"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetUserStatistics(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	stats, err := ctrl.BookingSvc.GetUserBookingStatistics(c.Request.Context(), userID)
	reply(c, stats, err)
}

func (ctrl *BookingController) CountUserBookings(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		n   int64
		err error
	)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		n, err = ctrl.BookingSvc.CountByUserAndStatus(ctx, userID, status)
	} else {
		n, err = ctrl.BookingSvc.CountByUser(ctx, userID)
	}
	reply(c, gin.H{"count": n}, err)
}

// ---------------------------
// by catalog / date
// ---------------------------

func (ctrl *BookingController) GetTrainBookings(c *gin.Context) {
	trainID, ok := uintParam(c, "trainId")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByTrain(c.Request.Context(), trainID)
	reply(c, bookings, err)
}

func (ctrl *BookingController) CountTrainBookings(c *gin.Context) {
	trainID, ok := uintParam(c, "trainId")
	if !ok {
		return
	}
	n, err := ctrl.BookingSvc.CountByTrain(c.Request.Context(), trainID)
	reply(c, gin.H{"count": n}, err)
}

func (ctrl *BookingController) GetFareTypeBookings(c *gin.Context) {
	fareTypeID, ok := uintParam(c, "fareTypeId")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByFareType(c.Request.Context(), fareTypeID)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetBookingsByStatus(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.BookingsByStatus(c.Request.Context(), c.Param("status"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetBookingsByJourneyDate(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.BookingsByJourneyDate(c.Request.Context(), c.Param("date"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) CountBookingsByJourneyDate(c *gin.Context) {
	n, err := ctrl.BookingSvc.CountByJourneyDate(c.Request.Context(), c.Param("date"))
	reply(c, gin.H{"count": n}, err)
}

func (ctrl *BookingController) GetBookingsByJourneyDateRange(c *gin.Context) {
	from, ok := requireQuery(c, "from")
	if !ok {
		return
	}
	to, ok := requireQuery(c, "to")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByJourneyDateRange(c.Request.Context(), from, to)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetBookingsByBookingDateRange(c *gin.Context) {
	from, ok := requireQuery(c, "from")
	if !ok {
		return
	}
	to, ok := requireQuery(c, "to")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByBookingDateRange(c.Request.Context(), from, to)
	reply(c, bookings, err)
}

func (ctrl *BookingController) GetBookingsByRoute(c *gin.Context) {
	source, ok := requireQuery(c, "source")
	if !ok {
		return
	}
	destination, ok := requireQuery(c, "destination")
	if !ok {
		return
	}
	bookings, err := ctrl.BookingSvc.BookingsByRoute(c.Request.Context(), source, destination)
	reply(c, bookings, err)
}

// ---------------------------
// text search (?q=)
// ---------------------------

func (ctrl *BookingController) SearchBySource(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.SearchBookingsBySource(c.Request.Context(), c.Query("q"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) SearchByDestination(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.SearchBookingsByDestination(c.Request.Context(), c.Query("q"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) SearchByTrainName(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.SearchBookingsByTrainName(c.Request.Context(), c.Query("q"))
	reply(c, bookings, err)
}

func (ctrl *BookingController) SearchByUsername(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.SearchBookingsByUsername(c.Request.Context(), c.Query("q"))
	reply(c, bookings, err)
}
