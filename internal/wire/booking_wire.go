package wire

import (
	"carwash-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET/POST /book - anyone can book, a customer session prefills the form
	r.Get("/book", bookingHandler.BookForm)
	r.Post("/book", bookingHandler.Book)

	// GET/POST /track - look up by reference + contact
	r.Get("/track", bookingHandler.TrackForm)
	r.Post("/track", bookingHandler.Track)
}
