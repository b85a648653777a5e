package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

// Register creates a USER account unless the payload asks for another role.
func (ctrl *UserController) Register(c *gin.Context) {
	var payload services.RegisterInput
	if !bindJSON(c, &payload) {
		return
	}
	user, err := ctrl.UserSvc.Register(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, user)
}

func (ctrl *UserController) Login(c *gin.Context) {
	var payload services.LoginInput
	if !bindJSON(c, &payload) {
		return
	}
	login, err := ctrl.UserSvc.Login(c.Request.Context(), payload)
	reply(c, login, err)
}

func (ctrl *UserController) ResetPassword(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.ResetPasswordInput
	if !bindJSON(c, &payload) {
		return
	}
	if err := ctrl.UserSvc.ResetPassword(c.Request.Context(), id, payload); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Password updated successfully"})
}
