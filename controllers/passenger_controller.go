package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

type PassengerController struct {
	PassengerSvc *services.PassengerService
}

func NewPassengerController(svc *services.PassengerService) *PassengerController {
	return &PassengerController{PassengerSvc: svc}
}

func (ctrl *PassengerController) AddPassenger(c *gin.Context) {
	bookingID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.PassengerInput
	if !bindJSON(c, &payload) {
		return
	}
	passenger, err := ctrl.PassengerSvc.AddPassenger(c.Request.Context(), bookingID, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, passenger)
}

func (ctrl *PassengerController) GetBookingPassengers(c *gin.Context) {
	bookingID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	passengers, err := ctrl.PassengerSvc.PassengersByBooking(c.Request.Context(), bookingID)
	reply(c, passengers, err)
}

func (ctrl *PassengerController) CountBookingPassengers(c *gin.Context) {
	bookingID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	n, err := ctrl.PassengerSvc.CountByBooking(c.Request.Context(), bookingID)
	reply(c, gin.H{"count": n}, err)
}

func (ctrl *PassengerController) PassengerInBooking(c *gin.Context) {
	bookingID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	exists, err := ctrl.PassengerSvc.ExistsInBooking(c.Request.Context(), bookingID, c.Param("idProof"))
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *PassengerController) GetPassenger(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	passenger, err := ctrl.PassengerSvc.GetPassenger(c.Request.Context(), id)
	reply(c, passenger, err)
}

func (ctrl *PassengerController) UpdatePassenger(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.PassengerInput
	if !bindJSON(c, &payload) {
		return
	}
	passenger, err := ctrl.PassengerSvc.UpdatePassenger(c.Request.Context(), id, payload)
	reply(c, passenger, err)
}

func (ctrl *PassengerController) DeletePassenger(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.PassengerSvc.DeletePassenger(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Passenger deleted successfully"})
}

func (ctrl *PassengerController) GetByIDProof(c *gin.Context) {
	passengers, err := ctrl.PassengerSvc.PassengersByIDProof(c.Request.Context(), c.Param("idProof"))
	reply(c, passengers, err)
}

func (ctrl *PassengerController) SearchByName(c *gin.Context) {
	passengers, err := ctrl.PassengerSvc.SearchPassengersByName(c.Request.Context(), c.Query("q"))
	reply(c, passengers, err)
}

func (ctrl *PassengerController) SearchByIDProof(c *gin.Context) {
	passengers, err := ctrl.PassengerSvc.SearchPassengersByIDProof(c.Request.Context(), c.Query("q"))
	reply(c, passengers, err)
}

func (ctrl *PassengerController) GetByAgeRange(c *gin.Context) {
	minAge, ok := intQuery(c, "min")
	if !ok {
		return
	}
	maxAge, ok := intQuery(c, "max")
	if !ok {
		return
	}
	passengers, err := ctrl.PassengerSvc.PassengersByAgeRange(c.Request.Context(), minAge, maxAge)
	reply(c, passengers, err)
}

func (ctrl *PassengerController) GetByGender(c *gin.Context) {
	passengers, err := ctrl.PassengerSvc.PassengersByGender(c.Request.Context(), c.Param("gender"))
	reply(c, passengers, err)
}

func (ctrl *PassengerController) CountByGender(c *gin.Context) {
	n, err := ctrl.PassengerSvc.CountByGender(c.Request.Context(), c.Param("gender"))
	reply(c, gin.H{"count": n}, err)
}

func (ctrl *PassengerController) GetStatistics(c *gin.Context) {
	stats, err := ctrl.PassengerSvc.GetPassengerStatistics(c.Request.Context())
	reply(c, stats, err)
}

func (ctrl *PassengerController) ExistsByIDProof(c *gin.Context) {
	exists, err := ctrl.PassengerSvc.ExistsByIDProof(c.Request.Context(), c.Param("idProof"))
	reply(c, gin.H{"exists": exists}, err)
}
