package controllers

import (
	"errors"
	"net/http"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	CustomerSvc *services.CustomerService
}

func NewCustomerController(svc *services.CustomerService) *CustomerController {
	return &CustomerController{CustomerSvc: svc}
}

// GetMe (GET /api/customers/me) - ข้อมูลลูกค้าที่สร้างไว้ตอนจองครั้งแรก
func (ctrl *CustomerController) GetMe(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	customer, err := ctrl.CustomerSvc.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// ยังไม่เคยจอง
			utils.JSONSuccess(c, http.StatusOK, gin.H{"id": actor.UserID})
			return
		}
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}
