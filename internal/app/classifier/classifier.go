// Package classifier maps a chat message to a canned supportive reply using
// an ordered list of keyword rules. The first matching rule wins.
package classifier

import "strings"

type Category string

const (
	CategoryCrisis    Category = "crisis"
	CategoryAnxiety   Category = "anxiety"
	CategorySadness   Category = "sadness"
	CategoryPositive  Category = "positive"
	CategoryGratitude Category = "gratitude"
	CategoryFallback  Category = "fallback"
)

const (
	CrisisResponse    = "I'm really concerned about what you're sharing. Your life matters, and I want to help. Please reach out to a crisis helpline: Call 988 (US) or text 'HELLO' to 741741. I've also notified your emergency contact. You're not alone in this."
	AnxietyResponse   = "I hear that you're feeling anxious. That must be really difficult. Let's take this one step at a time. Have you tried any grounding techniques? I can guide you through a 5-4-3-2-1 exercise if that would help."
	SadnessResponse   = "I'm sorry you're feeling this way. It takes courage to share these feelings. Remember, what you're experiencing is valid, and it's okay to not be okay. Would you like to talk about what's making you feel sad, or would you prefer some coping strategies?"
	PositiveResponse  = "I'm so glad to hear you're feeling better! That's wonderful progress. What do you think contributed to this positive feeling? It's important to recognize and celebrate these moments."
	GratitudeResponse = "You're very welcome. I'm here for you whenever you need support. Remember, seeking help is a sign of strength. How else can I support you today?"
	FallbackResponse  = "Thank you for sharing that with me. I'm here to listen and support you. Can you tell me more about how you're feeling? Sometimes talking about our thoughts and emotions can help us understand them better."
)

// Rule matches when any keyword is a substring of the lower-cased message.
// Keywords must be lower case.
type Rule struct {
	Category Category
	Keywords []string
	Response string
}

func (r Rule) matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Result is the outcome of classifying one message.
type Result struct {
	Category Category
	Response string
	Crisis   bool
}

// DefaultRules is evaluated top to bottom. Crisis must stay first.
var DefaultRules = []Rule{
	{
		Category: CategoryCrisis,
		Keywords: []string{"suicide", "kill myself", "end it all", "want to die", "no reason to live"},
		Response: CrisisResponse,
	},
	{
		Category: CategoryAnxiety,
		Keywords: []string{"anxious", "anxiety", "worried", "stress"},
		Response: AnxietyResponse,
	},
	{
		Category: CategorySadness,
		Keywords: []string{"sad", "depressed", "lonely", "down"},
		Response: SadnessResponse,
	},
	{
		Category: CategoryPositive,
		Keywords: []string{"happy", "good", "great", "better"},
		Response: PositiveResponse,
	},
	{
		Category: CategoryGratitude,
		Keywords: []string{"thank"},
		Response: GratitudeResponse,
	},
}

// Classifier holds an immutable rule chain.
type Classifier struct {
	rules    []Rule
	fallback Result
}

// New copies rules; a nil or empty slice yields a classifier that always falls back.
func New(rules []Rule) *Classifier {
	return &Classifier{
		rules: append([]Rule(nil), rules...),
		fallback: Result{
			Category: CategoryFallback,
			Response: FallbackResponse,
		},
	}
}

var defaultClassifier = New(DefaultRules)

// Default returns the classifier built from DefaultRules.
func Default() *Classifier {
	return defaultClassifier
}

// Classify uses the default rule chain.
func Classify(message string) Result {
	return defaultClassifier.Classify(message)
}

func (c *Classifier) Classify(message string) Result {
	lowered := strings.ToLower(message)

	for _, rule := range c.rules {
		if rule.matches(lowered) {
			return Result{
				Category: rule.Category,
				Response: rule.Response,
				Crisis:   rule.Category == CategoryCrisis,
			}
		}
	}
	return c.fallback
}

// Rules returns a copy of the chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}
