package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/infrastructure/resilience"
)

type Config struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	RPS             float64
	Burst           int
}

// Client wraps the official genai client with an outbound rate limiter and
// the retry executor. The typed wrappers below adapt it to the role ports.
type Client struct {
	api             *genai.Client
	model           string
	temperature     *float32
	maxOutputTokens int32
	limiter         *rate.Limiter
	executor        *resilience.Executor
}

func New(ctx context.Context, cfg Config, executor *resilience.Executor) (*Client, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		api:             api,
		model:           cfg.Model,
		temperature:     genai.Ptr(float32(cfg.Temperature)),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		limiter:         limiter,
		executor:        executor,
	}, nil
}

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify maps a query onto the fixed category set. An out-of-vocabulary
// or undetected reply normalizes to not-detected rather than an error.
func (c *Classifier) Classify(ctx context.Context, query string) (domain.CategoryResult, error) {
	respText, err := c.client.generateJSON(ctx, "gemini.classify", buildCategoryPrompt(query))
	if err != nil {
		return domain.CategoryResult{}, err
	}

	var result domain.CategoryResult
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return domain.CategoryResult{}, fmt.Errorf("parse category json: %w", err)
	}
	return normalizeCategory(result), nil
}

func normalizeCategory(result domain.CategoryResult) domain.CategoryResult {
	result.Category = strings.TrimSpace(result.Category)
	if !result.Detected || !domain.IsKnownCategory(result.Category) {
		return domain.CategoryResult{}
	}
	return result
}

type Selector struct {
	client *Client
}

func NewSelector(client *Client) *Selector {
	return &Selector{client: client}
}

// Select asks the model for the single most relevant document filename.
// The caller validates the filename against the corpus cache; an unknown
// pick means proceeding without an attachment.
func (s *Selector) Select(ctx context.Context, query string, docs []domain.ReferenceDocument) (domain.DocumentSelection, error) {
	if len(docs) == 0 {
		return domain.DocumentSelection{}, nil
	}

	respText, err := s.client.generateJSON(ctx, "gemini.select", buildSelectionPrompt(query, docs))
	if err != nil {
		return domain.DocumentSelection{}, err
	}

	var selection domain.DocumentSelection
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &selection); err != nil {
		return domain.DocumentSelection{}, fmt.Errorf("parse selection json: %w", err)
	}
	selection.Filename = strings.TrimSpace(selection.Filename)
	return selection, nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, prompt string, attachment *domain.ReferenceDocument) (string, error) {
	return g.client.generateText(ctx, "gemini.generate", prompt, attachment)
}

type Uploader struct {
	client *Client
}

func NewUploader(client *Client) *Uploader {
	return &Uploader{client: client}
}

func (u *Uploader) Upload(ctx context.Context, path string) (domain.ReferenceDocument, error) {
	var doc domain.ReferenceDocument
	call := func(ctx context.Context) error {
		if err := u.client.wait(ctx); err != nil {
			return err
		}
		file, err := u.client.api.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
			MIMEType: "application/pdf",
		})
		if err != nil {
			return fmt.Errorf("gemini upload: %w", err)
		}
		doc = referenceDocument(path, file)
		return nil
	}

	var err error
	if u.client.executor != nil {
		err = u.client.executor.Execute(ctx, "gemini.upload", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.ReferenceDocument{}, wrapTemporaryIfNeeded("gemini.upload", err)
	}
	return doc, nil
}

func referenceDocument(path string, file *genai.File) domain.ReferenceDocument {
	doc := domain.ReferenceDocument{
		Filename:   filepath.Base(path),
		Handle:     file.URI,
		MimeType:   file.MIMEType,
		UploadedAt: time.Now().UTC(),
	}
	if file.SizeBytes != nil {
		doc.SizeBytes = *file.SizeBytes
	}
	if doc.MimeType == "" {
		doc.MimeType = "application/pdf"
	}
	return doc
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		MaxOutputTokens:  c.maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	return c.generate(ctx, operation, prompt, nil, config)
}

func (c *Client) generateText(ctx context.Context, operation, prompt string, attachment *domain.ReferenceDocument) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	}
	return c.generate(ctx, operation, prompt, attachment, config)
}

func (c *Client) generate(
	ctx context.Context,
	operation, prompt string,
	attachment *domain.ReferenceDocument,
	config *genai.GenerateContentConfig,
) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if attachment != nil && attachment.HasHandle() {
		parts = append([]*genai.Part{genai.NewPartFromURI(attachment.Handle, attachment.MimeType)}, parts...)
	}
	contents := []*genai.Content{{Parts: parts}}

	var text string
	call := func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return fmt.Errorf("gemini %s: %w", operation, err)
		}
		out, err := responseText(resp)
		if err != nil {
			return fmt.Errorf("gemini %s: %w", operation, err)
		}
		text = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return text, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

var errEmptyResponse = errors.New("empty model response")

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", errEmptyResponse
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
