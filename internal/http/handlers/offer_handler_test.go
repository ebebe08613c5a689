package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOfferHandler_CreateOffer_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OfferHandler{svc: nil}
	r.POST("/offers", handler.CreateOffer)

	req, _ := http.NewRequest("POST", "/offers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOfferHandler_CreateOffer_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", uuid.New())
		c.Next()
	})
	handler := &OfferHandler{svc: nil}
	r.POST("/offers", handler.CreateOffer)

	body := strings.NewReader(`{"service_id": "not-a-uuid"}`)
	req, _ := http.NewRequest("POST", "/offers", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfferHandler_AcceptOffer_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OfferHandler{svc: nil}
	r.POST("/offers/:id/accept", handler.AcceptOffer)

	offerID := uuid.New()
	req, _ := http.NewRequest("POST", "/offers/"+offerID.String()+"/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOfferHandler_AcceptOffer_InvalidOfferID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", uuid.New())
		c.Next()
	})
	handler := &OfferHandler{svc: nil}
	r.POST("/offers/:id/accept", handler.AcceptOffer)

	req, _ := http.NewRequest("POST", "/offers/invalid-uuid/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfferHandler_GetOffer_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OfferHandler{svc: nil}
	r.GET("/offers/:id", handler.GetOffer)

	offerID := uuid.New()
	req, _ := http.NewRequest("GET", "/offers/"+offerID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
