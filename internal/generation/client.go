// Package generation wraps the external language-generation service. Every
// response is validated against an embedded JSON Schema before it reaches a
// caller; anything malformed surfaces as ErrUnavailable so callers can fall
// back to deterministic rules.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/veldran/cinerec/internal/config"
)

// ErrUnavailable covers transport failures, non-2xx responses, unparsable
// payloads and schema violations alike. Callers degrade on it.
var ErrUnavailable = errors.New("generation service unavailable")

const (
	SchemaToneDescriptor = "tone_descriptor"
	SchemaReviewAnalysis = "review_analysis"
	SchemaRationale      = "rationale"
)

var schemas = map[string]string{
	SchemaToneDescriptor: `{
		"type": "object",
		"required": ["dominant_emotion", "intensity", "tones"],
		"properties": {
			"dominant_emotion": {"type": "string", "enum": ["positive", "negative", "balanced"]},
			"intensity": {"type": "number", "minimum": 0, "maximum": 1},
			"tones": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	SchemaReviewAnalysis: `{
		"type": "object",
		"required": ["sentiment", "score"],
		"properties": {
			"sentiment": {"type": "string", "enum": ["positive", "neutral", "negative"]},
			"score": {"type": "number", "minimum": -1, "maximum": 1},
			"emotions": {"type": "array", "items": {"type": "string"}},
			"genres": {"type": "array", "items": {"type": "string"}},
			"themes": {"type": "array", "items": {"type": "string"}},
			"actors": {"type": "array", "items": {"type": "string"}},
			"directors": {"type": "array", "items": {"type": "string"}},
			"keywords": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	SchemaRationale: `{
		"type": "object",
		"required": ["rationale"],
		"properties": {
			"rationale": {"type": "string", "minLength": 1}
		}
	}`,
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
}

// Client is a thin JSON-over-HTTP client. A client built from an empty URL
// is valid and reports ErrUnavailable for every call.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	validators map[string]*gojsonschema.Schema
	logger     *logrus.Logger
}

func NewClient(cfg config.GenerationConfig, logger *logrus.Logger) (*Client, error) {
	validators := make(map[string]*gojsonschema.Schema, len(schemas))
	for name, raw := range schemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		validators[name] = schema
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		validators: validators,
		logger:     logger,
	}, nil
}

// GenerateJSON sends the prompt, validates the response body against the
// named schema and unmarshals it into out.
func (c *Client) GenerateJSON(ctx context.Context, prompt, schemaName string, out interface{}) error {
	if c.baseURL == "" {
		return ErrUnavailable
	}

	schema, ok := c.validators[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Format: "json",
	})
	if err != nil {
		return fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Generation request failed")
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithField("status", resp.StatusCode).Warn("Generation request rejected")
		return ErrUnavailable
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ErrUnavailable
	}

	validation, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil || !validation.Valid() {
		c.logger.WithField("schema", schemaName).Warn("Generation output failed schema validation")
		return ErrUnavailable
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return ErrUnavailable
	}
	return nil
}
