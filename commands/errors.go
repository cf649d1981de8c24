package commands

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/prftrack/prf-app-excel/engine"
	"github.com/prftrack/prf-app-excel/graph"
)

// report logs the structured details of a command failure. The error message itself is
// printed by the CLI.
func report(command string, err error) {
	fields := logrus.Fields{
		"command": command,
	}

	var configuration *engine.ConfigurationError
	var authorization *engine.AuthorizationError
	var notFound *engine.NotFoundError
	var resolution *engine.ResolutionError
	var remote *graph.Error

	switch {
	case errors.As(err, &configuration):
		fields["setting"] = configuration.Setting

	case errors.As(err, &authorization):
		fields["op"] = authorization.Op
		fields["attempts"] = len(authorization.Attempts)

	case errors.As(err, &notFound):
		fields["op"] = notFound.Op
		fields["prf"] = notFound.Key
		if len(notFound.Sheets) > 0 {
			fields["sheets"] = notFound.Sheets
		}

	case errors.As(err, &resolution):
		fields["op"] = resolution.Op
		if resolution.Sheet != "" {
			fields["sheet"] = resolution.Sheet
		}
	}

	if errors.As(err, &remote) {
		fields["status"] = remote.StatusCode
		if remote.Code != "" {
			fields["code"] = remote.Code
		}
	}

	logrus.WithFields(fields).Debug(err)
}
