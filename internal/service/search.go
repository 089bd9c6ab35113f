package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/travelmate/flightproxy/internal/logging"
	"github.com/travelmate/flightproxy/internal/metrics"
	"github.com/travelmate/flightproxy/internal/models"
	"github.com/travelmate/flightproxy/internal/providers"
)

// ErrFetchFailed is the only failure text clients see for errors that
// carry no structured upstream reply.
const ErrFetchFailed = "Nie udało się pobrać ofert lotów"

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

type SearchService struct {
	provider providers.FlightOfferProvider
	config   Config
	metrics  *metrics.Metrics
}

func NewSearchService(provider providers.FlightOfferProvider, config Config, m *metrics.Metrics) *SearchService {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &SearchService{
		provider: provider,
		config:   config,
		metrics:  m,
	}
}

// Search validates the query and, when it is well-formed, makes exactly one
// provider call. It returns the HTTP status and the envelope to send.
func (s *SearchService) Search(ctx context.Context, query models.SearchQuery) (int, models.Envelope) {
	logger := logging.FromContext(ctx)

	if errs := query.Validate(); len(errs) > 0 {
		logger.WithField("errors", errs).Info("Flight search rejected")
		s.metrics.ObserveSearch(metrics.OutcomeInvalid)
		return http.StatusBadRequest, models.Invalid(errs)
	}

	params, err := query.OfferParams()
	if err != nil {
		logger.WithError(err).Error("Failed to convert search query")
		s.metrics.ObserveSearch(metrics.OutcomeFailure)
		return http.StatusInternalServerError, models.Failure(ErrFetchFailed)
	}

	logger = logger.WithFields(logrus.Fields{
		"provider": s.provider.Name(),
		"params":   params,
	})
	logger.Info("Searching flight offers")

	searchCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	offers, err := s.provider.SearchFlightOffers(searchCtx, params)
	s.metrics.ObserveUpstream(time.Since(start))

	if err != nil {
		var respErr *providers.ResponseError
		if errors.As(err, &respErr) && isErrorStatus(respErr.StatusCode) {
			logger.WithError(err).WithField("status", respErr.StatusCode).Warn("Flight search failed upstream")
			s.metrics.ObserveSearch(metrics.OutcomeUpstreamError)
			return respErr.StatusCode, models.Failure(respErr.Body)
		}

		logger.WithError(err).Error("Flight search failed")
		s.metrics.ObserveSearch(metrics.OutcomeFailure)
		return http.StatusInternalServerError, models.Failure(ErrFetchFailed)
	}

	if len(offers) == 0 {
		logger.Error("Flight search returned no data")
		s.metrics.ObserveSearch(metrics.OutcomeFailure)
		return http.StatusInternalServerError, models.Failure(ErrFetchFailed)
	}

	s.metrics.ObserveSearch(metrics.OutcomeOK)
	return http.StatusOK, models.Success(offers)
}

// isErrorStatus reports whether an upstream status can be relayed as an
// error response. Anything else goes through the generic failure path.
func isErrorStatus(status int) bool {
	return status >= http.StatusBadRequest && status <= 599
}
