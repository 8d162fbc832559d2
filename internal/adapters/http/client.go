// Package http implements the deployment client port against the mesh
// deployment service's JSON API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cenkalti/backoff/v4"

	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/ports"
)

const deploymentsEndpoint = "/v1/deployments"

// maxRetries bounds the retry of transient create/delete failures.
const maxRetries = 4

// Client implements ports.DeploymentClient over HTTP.
//
// Retry policy lives here, not in the orchestration core: transient
// failures of the create and delete calls are retried with exponential
// backoff; status queries are single attempts, since the poller issues
// the next one at the regular cadence anyway.
type Client struct {
	baseURL string
	authKey string
	http    ports.HTTPClient
	logger  ports.Logger

	newBackOff func() backoff.BackOff
}

// NewClient creates a deployment client for the given service.
func NewClient(baseURL, authKey string, httpClient ports.HTTPClient, logger ports.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		authKey: authKey,
		http:    httpClient,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
		},
	}
}

// deploymentRequest is the create/update request body.
type deploymentRequest struct {
	Image            string `json:"image"`
	RegistryServer   string `json:"registryServer,omitempty"`
	RegistryUsername string `json:"registryUsername,omitempty"`
	RegistryPassword string `json:"registryPassword,omitempty"`
	PipelineURL      string `json:"pipelineUrl,omitempty"`
	CommitSHA        string `json:"commitSha,omitempty"`
	Replicas         int    `json:"replicas,omitempty"`
}

// statusResponse is the body of every status query.
type statusResponse struct {
	Status string   `json:"status"`
	Logs   []string `json:"logs,omitempty"`
}

// CreateOrUpdate submits the deployment object, retrying transient
// failures.
func (c *Client) CreateOrUpdate(ctx context.Context, spec domain.DeploymentSpec) error {
	body, err := json.Marshal(deploymentRequest{
		Image:            spec.Image,
		RegistryServer:   spec.RegistryServer,
		RegistryUsername: spec.RegistryUsername,
		RegistryPassword: spec.RegistryPassword,
		PipelineURL:      spec.PipelineURL,
		CommitSHA:        spec.CommitSHA,
		Replicas:         spec.Replicas,
	})
	if err != nil {
		return fmt.Errorf("marshal deployment: %w", err)
	}

	url := c.deploymentURL(spec.Name, spec.ResourceGroup)
	return c.retry(ctx, "create deployment", func() error {
		return c.send(ctx, http.MethodPut, url, body)
	})
}

// Delete requests deletion of the deployment object, retrying transient
// failures.
func (c *Client) Delete(ctx context.Context, name, resourceGroup string) error {
	url := c.deploymentURL(name, resourceGroup)
	return c.retry(ctx, "delete deployment", func() error {
		return c.send(ctx, http.MethodDelete, url, nil)
	})
}

// ApplicationStatus reports the current application facet status.
func (c *Client) ApplicationStatus(ctx context.Context, name, resourceGroup string) (domain.ApplicationStatus, error) {
	resp, err := c.status(ctx, c.deploymentURL(name, resourceGroup)+"/status/application")
	if err != nil {
		return domain.ApplicationUnknown, err
	}
	return domain.ParseApplicationStatus(resp.Status), nil
}

// ServiceStatus reports the current service facet status.
func (c *Client) ServiceStatus(ctx context.Context, name, resourceGroup string) (domain.ServiceStatus, error) {
	resp, err := c.status(ctx, c.deploymentURL(name, resourceGroup)+"/status/service")
	if err != nil {
		return domain.ServiceUnknown, err
	}
	return domain.ParseServiceStatus(resp.Status), nil
}

// AgentStatus reports the current agent facet status for one replica.
// With verbose set, agent log excerpts included in the response are
// written to the logger.
func (c *Client) AgentStatus(ctx context.Context, name, resourceGroup string, replica int, verbose bool) (domain.AgentStatus, error) {
	url := c.deploymentURL(name, resourceGroup) + "/status/agent?replica=" + strconv.Itoa(replica)
	if verbose {
		url += "&verbose=true"
	}
	resp, err := c.status(ctx, url)
	if err != nil {
		return domain.AgentUnknown, err
	}
	for _, line := range resp.Logs {
		c.logger.Debug("agent log",
			ports.String("deployment", name),
			ports.Int("replica", replica),
			ports.String("line", line),
		)
	}
	return domain.ParseAgentStatus(resp.Status), nil
}

// send performs one write request; a 4xx response is permanent, other
// failures are retryable.
func (c *Client) send(ctx context.Context, method, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	respBody, _ := io.ReadAll(resp.Body)
	reqErr := fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	if resp.StatusCode/100 == 4 {
		return backoff.Permanent(reqErr)
	}
	return reqErr
}

// status performs one status query; no retry, the poller supplies the
// cadence.
func (c *Client) status(ctx context.Context, url string) (statusResponse, error) {
	var parsed statusResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return parsed, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return parsed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return parsed, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return parsed, fmt.Errorf("decode status: %w", err)
	}
	return parsed, nil
}

func (c *Client) retry(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil && ctx.Err() == nil {
			c.logger.Warn("request failed",
				ports.String("operation", op),
				ports.Int("attempt", attempt),
				ports.Err(err),
			)
		}
		return err
	}, backoff.WithContext(c.newBackOff(), ctx))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.authKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) deploymentURL(name, resourceGroup string) string {
	return c.baseURL + deploymentsEndpoint + "/" + resourceGroup + "/" + name
}
