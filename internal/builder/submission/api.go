package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	httpclient "application-builder/internal/common/http"
	"application-builder/internal/common/logger"
	"application-builder/internal/models"
)

// APIClient talks to the remote application service. Submit, Update and
// Withdraw share one contract: every response body is an ApiResponse,
// whatever the status code.
type APIClient struct {
	client *httpclient.Client
	logger logger.Logger
}

func NewAPIClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *APIClient {
	client := httpclient.NewClient(baseURL, timeout)
	if apiKey != "" {
		client.WithHeader("Authorization", "Bearer "+apiKey)
	}
	return &APIClient{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "application-api"}),
	}
}

func (c *APIClient) Submit(ctx context.Context, req models.SubmitApplicationRequest) (*models.ApiResponse, error) {
	return c.do(ctx, http.MethodPost, "/applications", req)
}

func (c *APIClient) Update(ctx context.Context, applicationID string, req models.UpdateApplicationRequest) (*models.ApiResponse, error) {
	return c.do(ctx, http.MethodPut, "/applications/"+url.PathEscape(applicationID), req)
}

func (c *APIClient) Withdraw(ctx context.Context, applicationID string) (*models.ApiResponse, error) {
	return c.do(ctx, http.MethodDelete, "/applications/"+url.PathEscape(applicationID), nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}) (*models.ApiResponse, error) {
	resp, err := c.client.DoJSON(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var out models.ApiResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		c.logger.Warn("undecodable application service response", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return &models.ApiResponse{Success: false, Message: statusText(resp)}, nil
	}

	// a 2xx without an explicit success flag is not trusted
	if !resp.OK() && out.Success {
		out.Success = false
	}
	if !out.Success && out.Message == "" {
		out.Message = statusText(resp)
	}
	return &out, nil
}

func statusText(resp *httpclient.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
