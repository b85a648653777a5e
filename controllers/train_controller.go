package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

type TrainController struct {
	TrainSvc *services.TrainService
}

func NewTrainController(svc *services.TrainService) *TrainController {
	return &TrainController{TrainSvc: svc}
}

func (ctrl *TrainController) CreateTrain(c *gin.Context) {
	var payload services.TrainInput
	if !bindJSON(c, &payload) {
		return
	}
	train, err := ctrl.TrainSvc.CreateTrain(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, train)
}

func (ctrl *TrainController) GetTrains(c *gin.Context) {
	trains, err := ctrl.TrainSvc.ListTrains(c.Request.Context())
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrain(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	train, err := ctrl.TrainSvc.GetTrain(c.Request.Context(), id)
	reply(c, train, err)
}

func (ctrl *TrainController) GetTrainByName(c *gin.Context) {
	train, err := ctrl.TrainSvc.GetTrainByName(c.Request.Context(), c.Param("name"))
	reply(c, train, err)
}

func (ctrl *TrainController) GetTrainsByStatus(c *gin.Context) {
	trains, err := ctrl.TrainSvc.TrainsByStatus(c.Request.Context(), c.Param("status"))
	reply(c, trains, err)
}

func routeQuery(c *gin.Context) (string, string, bool) {
	source, ok := requireQuery(c, "source")
	if !ok {
		return "", "", false
	}
	destination, ok := requireQuery(c, "destination")
	if !ok {
		return "", "", false
	}
	return source, destination, true
}

func (ctrl *TrainController) GetTrainsByRoute(c *gin.Context) {
	source, destination, ok := routeQuery(c)
	if !ok {
		return
	}
	trains, err := ctrl.TrainSvc.TrainsByRoute(c.Request.Context(), source, destination)
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsBySource(c *gin.Context) {
	trains, err := ctrl.TrainSvc.TrainsBySource(c.Request.Context(), c.Param("source"))
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsByDestination(c *gin.Context) {
	trains, err := ctrl.TrainSvc.TrainsByDestination(c.Request.Context(), c.Param("destination"))
	reply(c, trains, err)
}

func (ctrl *TrainController) SearchByName(c *gin.Context) {
	trains, err := ctrl.TrainSvc.SearchTrainsByName(c.Request.Context(), c.Query("q"))
	reply(c, trains, err)
}

func (ctrl *TrainController) SearchBySource(c *gin.Context) {
	trains, err := ctrl.TrainSvc.SearchTrainsBySource(c.Request.Context(), c.Query("q"))
	reply(c, trains, err)
}

func (ctrl *TrainController) SearchByDestination(c *gin.Context) {
	trains, err := ctrl.TrainSvc.SearchTrainsByDestination(c.Request.Context(), c.Query("q"))
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsBySchedule(c *gin.Context) {
	trains, err := ctrl.TrainSvc.TrainsByScheduleDay(c.Request.Context(), c.Param("day"))
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsByScheduleAndRoute(c *gin.Context) {
	source, destination, ok := routeQuery(c)
	if !ok {
		return
	}
	trains, err := ctrl.TrainSvc.TrainsByScheduleDayAndRoute(c.Request.Context(), c.Param("day"), source, destination)
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsWithSeats(c *gin.Context) {
	trains, err := ctrl.TrainSvc.TrainsWithAvailableSeats(c.Request.Context())
	reply(c, trains, err)
}

func (ctrl *TrainController) GetTrainsWithSeatsForRoute(c *gin.Context) {
	source, destination, ok := routeQuery(c)
	if !ok {
		return
	}
	trains, err := ctrl.TrainSvc.TrainsWithAvailableSeatsForRoute(c.Request.Context(), source, destination)
	reply(c, trains, err)
}

func (ctrl *TrainController) SearchTrains(c *gin.Context) {
	var criteria services.TrainSearchCriteria
	if !bindJSON(c, &criteria) {
		return
	}
	trains, err := ctrl.TrainSvc.SearchTrains(c.Request.Context(), criteria)
	reply(c, trains, err)
}

func (ctrl *TrainController) GetAvailableTrains(c *gin.Context) {
	source, destination, ok := routeQuery(c)
	if !ok {
		return
	}
	date, ok := requireQuery(c, "date")
	if !ok {
		return
	}
	trains, err := ctrl.TrainSvc.AvailableTrainsForDate(c.Request.Context(), source, destination, date)
	reply(c, trains, err)
}

func (ctrl *TrainController) UpdateTrain(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.TrainInput
	if !bindJSON(c, &payload) {
		return
	}
	train, err := ctrl.TrainSvc.UpdateTrain(c.Request.Context(), id, payload)
	reply(c, train, err)
}

func (ctrl *TrainController) UpdateTrainStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		var payload statusPayload
		if !bindJSON(c, &payload) {
			return
		}
		status = payload.Status
	}
	train, err := ctrl.TrainSvc.UpdateTrainStatus(c.Request.Context(), id, status)
	reply(c, train, err)
}

func (ctrl *TrainController) DeleteTrain(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.TrainSvc.DeleteTrain(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Train deleted successfully"})
}

func (ctrl *TrainController) ExistsByName(c *gin.Context) {
	exists, err := ctrl.TrainSvc.ExistsByTrainName(c.Request.Context(), c.Param("name"))
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *TrainController) ExistsByRoute(c *gin.Context) {
	source, destination, ok := routeQuery(c)
	if !ok {
		return
	}
	exists, err := ctrl.TrainSvc.ExistsByRoute(c.Request.Context(), source, destination)
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *TrainController) GetStations(c *gin.Context) {
	stations, err := ctrl.TrainSvc.Stations(c.Request.Context())
	reply(c, stations, err)
}

// ---------------------------
// fare types
// ---------------------------

func (ctrl *TrainController) GetFareTypes(c *gin.Context) {
	trainID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	fares, err := ctrl.TrainSvc.ListFareTypes(c.Request.Context(), trainID)
	reply(c, fares, err)
}

func (ctrl *TrainController) AddFareType(c *gin.Context) {
	trainID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.FareTypeInput
	if !bindJSON(c, &payload) {
		return
	}
	fare, err := ctrl.TrainSvc.AddFareType(c.Request.Context(), trainID, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, fare)
}

func (ctrl *TrainController) GetFareType(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	fare, err := ctrl.TrainSvc.GetFareType(c.Request.Context(), id)
	reply(c, fare, err)
}

func (ctrl *TrainController) UpdateFareType(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.FareTypeInput
	if !bindJSON(c, &payload) {
		return
	}
	fare, err := ctrl.TrainSvc.UpdateFareType(c.Request.Context(), id, payload)
	reply(c, fare, err)
}

func (ctrl *TrainController) DeleteFareType(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.TrainSvc.DeleteFareType(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Fare type deleted successfully"})
}
