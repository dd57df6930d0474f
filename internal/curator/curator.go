package curator

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Replies the curator falls back to
const (
	Greeting      = "Welcome to the archive. I am your digital curator. How may I assist your discovery today?"
	ErrorReply    = "Apologies, a synchronization error occurred in the neural link."
	FallbackReply = "Protocol executed."
)

// Tool names the model may call
const (
	ToolFilterProducts = "filter_products"
	ToolAddToCart      = "add_to_cart"
	ToolShowCart       = "show_cart"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrNotConfigured   = errors.New("curator model not configured")
	ErrHistoryNotEnded = errors.New("history must end with a user message")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a function call requested by the model
type ToolCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Reply is what the model produced for one turn
type Reply struct {
	Text  string
	Calls []ToolCall
}

// Model generates the next turn given the catalog and the conversation so far
type Model interface {
	Generate(ctx context.Context, products []models.Product, history []Message) (Reply, error)
}

// Actions are the storefront operations the curator may drive
type Actions interface {
	Products() []models.Product
	SetSearchQuery(q string)
	SetSelectedCategory(c string)
	AddToCartByID(ctx context.Context, id models.ProductID) bool
	ToggleCart() bool
}

// Result is the curator's answer and the tool calls it applied
type Result struct {
	Reply   Message    `json:"reply"`
	Applied []ToolCall `json:"applied"`
}

// Curator is the shopping assistant. It is stateless; callers own the
// conversation history.
type Curator struct {
	model  Model
	logger *zap.Logger
}

// New creates a curator. A nil model answers every message with ErrorReply.
func New(model Model) *Curator {
	return &Curator{
		model:  model,
		logger: util.GetLogger(),
	}
}

// Send asks the model for the next turn and applies its tool calls to
// actions. history must end with the user's new message. Model failures are
// answered with ErrorReply rather than returned.
func (c *Curator) Send(ctx context.Context, actions Actions, history []Message) (*Result, error) {
	if len(history) == 0 || history[len(history)-1].Role != RoleUser {
		return nil, ErrHistoryNotEnded
	}
	if strings.TrimSpace(history[len(history)-1].Content) == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := util.StartSpan(ctx, "Curator.Send")
	defer span.End()

	reply, err := c.generate(ctx, actions.Products(), history)
	if err != nil {
		util.FailSpan(span, err)
		c.logger.Warn("Curator model failed", zap.Error(err))
		util.CuratorRequestsTotal.WithLabelValues("error").Inc()
		return &Result{Reply: Message{Role: RoleModel, Content: ErrorReply}, Applied: []ToolCall{}}, nil
	}

	applied := make([]ToolCall, 0, len(reply.Calls))
	for _, call := range reply.Calls {
		if c.apply(ctx, actions, call) {
			applied = append(applied, call)
		}
	}

	text := reply.Text
	if text == "" {
		text = FallbackReply
	}
	util.CuratorRequestsTotal.WithLabelValues("ok").Inc()
	return &Result{Reply: Message{Role: RoleModel, Content: text}, Applied: applied}, nil
}

func (c *Curator) generate(ctx context.Context, products []models.Product, history []Message) (Reply, error) {
	if c.model == nil {
		return Reply{}, ErrNotConfigured
	}
	return c.model.Generate(ctx, products, history)
}

// apply runs one tool call and reports whether it had an effect
func (c *Curator) apply(ctx context.Context, actions Actions, call ToolCall) bool {
	switch call.Name {
	case ToolFilterProducts:
		actions.SetSearchQuery(argString(call.Args, "query"))
		category := argString(call.Args, "category")
		if category == "" {
			category = catalog.AllCategories
		}
		actions.SetSelectedCategory(category)
		return true
	case ToolAddToCart:
		id := models.ProductID(argString(call.Args, "product_id"))
		if id == "" || !actions.AddToCartByID(ctx, id) {
			c.logger.Debug("Curator asked for unknown product", zap.String("product_id", id.String()))
			return false
		}
		return true
	case ToolShowCart:
		actions.ToggleCart()
		return true
	default:
		c.logger.Debug("Curator called unknown tool", zap.String("tool", call.Name))
		return false
	}
}

// argString reads a string argument; numeric ids arrive as JSON numbers
func argString(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
