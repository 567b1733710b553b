package fortune

import (
	"context"

	"google.golang.org/genai"

	"fortune-canvas-server/modules/common/gemini"
)

// GeminiGenerator - Generator를 Gemini 모델 호출로 구현
type GeminiGenerator struct {
	client     *gemini.Client
	textModel  string
	imageModel string
}

func NewGeminiGenerator(client *gemini.Client, textModel, imageModel string) *GeminiGenerator {
	return &GeminiGenerator{client: client, textModel: textModel, imageModel: imageModel}
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	return g.client.GenerateJSON(ctx, g.textModel, req.Prompt, req.SystemInstruction, toGenaiSchema(req.Schema))
}

func (g *GeminiGenerator) GenerateImage(ctx context.Context, req GenerationRequest) (*InlineImage, error) {
	blob, err := g.client.GenerateImage(ctx, g.imageModel, req.Prompt, req.AspectRatio)
	if err != nil || blob == nil {
		return nil, err
	}
	return &InlineImage{Data: blob.Data, MIMEType: blob.MIMEType}, nil
}

// toGenaiSchema - 필수 문자열 필드로 이루어진 객체 스키마
func toGenaiSchema(fields []SchemaField) *genai.Schema {
	if len(fields) == 0 {
		return nil
	}
	schema := &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       make(map[string]*genai.Schema, len(fields)),
		Required:         make([]string, 0, len(fields)),
		PropertyOrdering: make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		schema.Properties[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
		schema.Required = append(schema.Required, f.Name)
		schema.PropertyOrdering = append(schema.PropertyOrdering, f.Name)
	}
	return schema
}
