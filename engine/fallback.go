package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/graph"
)

// session is one attempt at an operation with a single authorization strategy.
type session struct {
	strategy auth.Strategy
	client   *graph.Client
	log      logrus.FieldLogger
}

// withFallback runs the operation once for each authorization strategy in turn, moving on to
// the next strategy only if the operation failed authorization. Errors from every attempt are
// retained in the returned error.
func (e *Engine) withFallback(ctx context.Context, op string, purpose auth.Purpose, log logrus.FieldLogger, f func(*session) error) error {
	strategies := e.provider.Strategies()
	if len(strategies) == 0 {
		return &ConfigurationError{Setting: "MS_CLIENT_ID", Reason: "no authorization strategy available"}
	}

	attempts := []error{}

	for i, strategy := range strategies {
		s := session{
			strategy: strategy,
			log:      log.WithField("strategy", strategy),
		}

		err := e.attempt(ctx, &s, purpose, f)
		if err == nil {
			return nil
		}

		attempts = append(attempts, fmt.Errorf("%v: %w", strategy, err))

		if !isAuthorization(err) {
			if len(attempts) == 1 {
				return err
			}

			return fmt.Errorf("%v: %w", op, errors.Join(attempts...))
		}

		if i+1 < len(strategies) {
			s.log.Warnf("%v: authorization failed, retrying with %v authorization (%v)", op, strategies[i+1], err)
		}
	}

	return &AuthorizationError{
		Op:       op,
		Attempts: attempts,
	}
}

func (e *Engine) attempt(ctx context.Context, s *session, purpose auth.Purpose, f func(*session) error) error {
	source, err := e.provider.TokenSource(ctx, s.strategy, purpose)
	if err != nil {
		return err
	}

	scopes := []string{auth.GraphDefaultScope}
	if s.strategy == auth.Delegated {
		scopes = auth.Scopes(purpose)
	}

	client, err := graph.NewClient(source, scopes,
		graph.WithBaseURL(e.config.Graph.BaseURL),
		graph.WithHTTPClient(e.http),
		graph.WithTimeout(e.config.Graph.Timeout),
		graph.WithLogger(s.log))
	if err != nil {
		return err
	}

	s.client = client

	return f(s)
}

func isAuthorization(err error) bool {
	return graph.IsAuthorization(err) || errors.Is(err, errRequiresDelegated)
}
