package controllers

import (
	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
)

type AdminController struct {
	DashboardSvc *services.DashboardService
}

func NewAdminController(svc *services.DashboardService) *AdminController {
	return &AdminController{DashboardSvc: svc}
}

func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	dashboard, err := ctrl.DashboardSvc.GetDashboard(c.Request.Context())
	reply(c, dashboard, err)
}
