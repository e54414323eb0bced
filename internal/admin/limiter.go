package admin

import (
	"fmt"
	"net/http"

	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

// NewLoginLimiter throttles login attempts per client IP. rate uses the
// limiter format, e.g. "10-M". A nil store keeps counters in memory.
func NewLoginLimiter(rate string, store limiter.Store) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid login rate %q: %w", rate, err)
	}
	if store == nil {
		store = memory.NewStore()
	}

	mw := mhttp.NewMiddleware(
		limiter.New(store, r, limiter.WithTrustForwardHeader(true)),
		mhttp.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			response.TooManyRequests(w, "Too many login attempts, try again later")
		}),
	)
	return mw.Handler, nil
}
