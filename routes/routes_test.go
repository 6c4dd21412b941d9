package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/controllers"
	"hotel-booking-engine/middleware"
	"hotel-booking-engine/models"
	"hotel-booking-engine/services"
	"hotel-booking-engine/store/memory"
)

func newRouter(t *testing.T, origins []string) (*gin.Engine, models.Hotel) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	hotel := models.Hotel{Name: "Seaside"}
	if err := st.CreateHotel(context.Background(), &hotel); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bookings := services.NewBookingService(st)
	avail := services.NewAvailabilityService(st)
	ctl := Controllers{
		Rooms:        controllers.NewRoomController(services.NewRoomService(st)),
		Availability: controllers.NewAvailabilityController(avail),
		Pricing:      controllers.NewPricingController(services.NewPricingService(st)),
		Bookings:     controllers.NewBookingController(bookings),
		Customers:    controllers.NewCustomerController(services.NewCustomerService(st)),
		GridSessions: controllers.NewGridSessionController(services.NewGridSessionService(st, bookings, avail, services.GridSessionConfig{})),
	}
	return SetupRouter(ctl, origins), hotel
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestHotelRoutesMounted(t *testing.T) {
	r, hotel := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/hotels/%d/rooms", hotel.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("rooms of hotel %d: status = %d, body %s", hotel.ID, w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/grid-sessions/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d", w.Code)
	}
}

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		credentials bool
	}{
		{"default wildcard", nil, false},
		{"explicit wildcard", []string{"*"}, false},
		{"listed origins", []string{"https://front.example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := corsConfig(tt.origins)
			if conf.AllowCredentials != tt.credentials {
				t.Errorf("AllowCredentials = %v, want %v", conf.AllowCredentials, tt.credentials)
			}
			if len(conf.AllowOrigins) == 0 {
				t.Error("no origins")
			}
		})
	}
}

func TestCorsPreflight(t *testing.T) {
	r, _ := newRouter(t, []string{"https://front.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/hotels/1/rooms", nil)
	req.Header.Set("Origin", "https://front.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://front.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
