package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

type UserController struct {
	UserSvc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{UserSvc: svc}
}

func (ctrl *UserController) GetUsers(c *gin.Context) {
	users, err := ctrl.UserSvc.ListUsers(c.Request.Context())
	reply(c, users, err)
}

func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	user, err := ctrl.UserSvc.GetUser(c.Request.Context(), id)
	reply(c, user, err)
}

func (ctrl *UserController) GetByUsername(c *gin.Context) {
	user, err := ctrl.UserSvc.GetUserByUsername(c.Request.Context(), c.Param("username"))
	reply(c, user, err)
}

func (ctrl *UserController) GetByEmail(c *gin.Context) {
	user, err := ctrl.UserSvc.GetUserByEmail(c.Request.Context(), c.Param("email"))
	reply(c, user, err)
}

func (ctrl *UserController) GetByRole(c *gin.Context) {
	users, err := ctrl.UserSvc.UsersByRole(c.Request.Context(), c.Param("role"))
	reply(c, users, err)
}

func (ctrl *UserController) SearchByUsername(c *gin.Context) {
	users, err := ctrl.UserSvc.SearchUsersByUsername(c.Request.Context(), c.Query("q"))
	reply(c, users, err)
}

func (ctrl *UserController) SearchByEmail(c *gin.Context) {
	users, err := ctrl.UserSvc.SearchUsersByEmail(c.Request.Context(), c.Query("q"))
	reply(c, users, err)
}

func (ctrl *UserController) UpdateUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.UpdateUserInput
	if !bindJSON(c, &payload) {
		return
	}
	user, err := ctrl.UserSvc.UpdateUser(c.Request.Context(), id, payload)
	reply(c, user, err)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.UserSvc.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (ctrl *UserController) ExistsByUsername(c *gin.Context) {
	exists, err := ctrl.UserSvc.ExistsByUsername(c.Request.Context(), c.Param("value"))
	reply(c, gin.H{"exists": exists}, err)
}

func (ctrl *UserController) ExistsByEmail(c *gin.Context) {
	exists, err := ctrl.UserSvc.ExistsByEmail(c.Request.Context(), c.Param("value"))
	reply(c, gin.H{"exists": exists}, err)
}
