// internal/services/graphql_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/utils"
)

// ErrGraphQL marks errors reported in the "errors" member of a response.
var ErrGraphQL = errors.New("graphql error")

// GraphQLClient posts queries to a single GraphQL endpoint.
type GraphQLClient struct {
	httpClient *http.Client
	endpoint   string
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

func NewGraphQLClient(endpoint string, timeout time.Duration) *GraphQLClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GraphQLClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSpace(endpoint),
	}
}

// Do executes query and decodes the data member into out. out may be nil.
func (c *GraphQLClient) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := utils.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read graphql response: %w", err)
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("graphql endpoint returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("graphql endpoint returned status %d", resp.StatusCode)
	}

	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}
