package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/checkout"
)

var errOrderNotFound = apperr.New(apperr.KindNotFound, "order not found")

func (s *Server) createPaymentIntent(c *gin.Context) {
	var req checkout.BeginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.deps.Checkout.Begin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// createOrder records a paid order. A signed-in shopper is linked to it;
// guests check out without an account.
func (s *Server) createOrder(c *gin.Context) {
	var req checkout.FinalizeRequest
	if !bindJSON(c, &req) {
		return
	}
	if sessionToken(c) != "" {
		if u, err := s.currentUser(c); err == nil {
			req.UserID = &u.ID
		}
	}

	detail, err := s.deps.Checkout.Finalize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail.Order)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.deps.Store.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	detail, err := s.deps.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			err = errOrderNotFound
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
