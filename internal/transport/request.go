package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/logging"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > maxErrorBody {
			message = message[:maxErrorBody]
		}
		return errors.NewAPIError(endpoint, resp.StatusCode, message)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}

	return nil
}
