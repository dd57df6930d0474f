package curator

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiModel is a Model backed by the Gemini API
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini-backed model
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiModel{client: client, model: model}, nil
}

// Generate sends the conversation with the catalog and tool declarations
func (g *GeminiModel) Generate(ctx context.Context, products []models.Product, history []Message) (Reply, error) {
	prompt, err := systemPrompt(products)
	if err != nil {
		return Reply{}, err
	}

	contents := make([]*genai.Content, len(history))
	for i, m := range history {
		role := genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents[i] = genai.NewContentFromText(m.Content, genai.Role(role))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: toolDeclarations()}},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("Gemini generate failed: %w", err)
	}

	reply := Reply{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		reply.Calls = append(reply.Calls, ToolCall{Name: fc.Name, Args: fc.Args})
	}
	return reply, nil
}

type promptProduct struct {
	ID          models.ProductID `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Description string           `json:"description"`
}

func systemPrompt(products []models.Product) (string, error) {
	slim := make([]promptProduct, len(products))
	for i, p := range products {
		slim[i] = promptProduct{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.Price,
			Description: p.Description,
		}
	}
	inventory, err := json.Marshal(slim)
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog for prompt: %w", err)
	}

	return `You are "The Curator", the shopping assistant of a calligraphy and art store.
Keep answers short and refined.

Products:
` + string(inventory) + `

Tools:
1. filter_products(query, category): filter the archive view. Use "All" when no category is given.
2. add_to_cart(product_id): add a product to the cart.
3. show_cart(): open the cart.

Always confirm what you did.`, nil
}

func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolFilterProducts,
			Description: "Filter the products shown in the archive view.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query":    {Type: genai.TypeString, Description: "Search text matched against name or description."},
					"category": {Type: genai.TypeString, Description: "Category to show, or 'All'."},
				},
				Required: []string{"query", "category"},
			},
		},
		{
			Name:        ToolAddToCart,
			Description: "Add a product to the cart by its ID.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "The ID of the product to add."},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        ToolShowCart,
			Description: "Open the cart.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
	}
}
