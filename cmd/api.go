package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/sptty/internal/services"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the Web API and prints the body.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, http.MethodGet, cmd.StringArg("path"), "", cmd.Bool("pretty"))
}

// APIPut makes a direct PUT request with an optional JSON body.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, http.MethodPut, cmd.StringArg("path"), cmd.String("data"), true)
}

// APIPost makes a direct POST request with an optional JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, http.MethodPost, cmd.StringArg("path"), cmd.String("data"), true)
}

func (r *Runner) apiRequest(ctx context.Context, method, path, data string, pretty bool) error {
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	var in services.Input = services.Empty{}
	if data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
		}
		in = services.JSON{Value: json.RawMessage(data)}
	}

	client, err := r.apiClient(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("direct request", "method", method, "path", path)

	var out services.Raw
	if err := client.Request(ctx, path, method, in, &out); err != nil {
		return err
	}
	if len(out.Data) == 0 {
		return nil
	}

	if pretty && json.Valid(out.Data) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out.Data, "", "  "); err == nil {
			out.Data = buf.Bytes()
		}
	}
	return r.writePlain("%s\n", out.Data)
}
