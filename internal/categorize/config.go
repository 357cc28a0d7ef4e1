// Package categorize assigns spending categories to transaction
// descriptions. Matching is tiered: an exact/keyword tier built on
// Aho-Corasick runs first, a semantic tier over indexed merchant
// exemplars catches variations, and anything below threshold falls
// back to the configured unmatched category.
package categorize

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FallbackCategory is used when no tier produces a match.
const FallbackCategory = "Uncategorized"

// Category is one configured spending category.
type Category struct {
	Name string `json:"name"`
	// Keywords feed the exact-match tier. Matching is case-insensitive
	// substring containment.
	Keywords []string `json:"keywords"`
	// Exemplars are merchant strings indexed for the semantic tier.
	// Keywords double as exemplars when this is empty.
	Exemplars []string `json:"exemplars,omitempty"`
}

// Config is a versioned category configuration, loadable from JSON and
// hot-swappable at runtime.
type Config struct {
	Version    int        `json:"version"`
	Fallback   string     `json:"fallback,omitempty"`
	Categories []Category `json:"categories"`
}

// LoadConfig reads and validates a category configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse category config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid category config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks structural invariants. An invalid config is rejected
// as a whole so a bad hot-swap can never leave matching half-updated.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", c.Version)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}
	names := make(map[string]bool, len(c.Categories))
	keywords := make(map[string]string)
	for _, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return fmt.Errorf("category with empty name")
		}
		if names[name] {
			return fmt.Errorf("duplicate category %q", name)
		}
		names[name] = true
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("category %q has no keywords", name)
		}
		for _, kw := range cat.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" {
				return fmt.Errorf("category %q has an empty keyword", name)
			}
			if owner, dup := keywords[k]; dup && owner != name {
				return fmt.Errorf("keyword %q appears in both %q and %q", k, owner, name)
			}
			keywords[k] = name
		}
	}
	return nil
}

// fallback returns the configured unmatched category name.
func (c *Config) fallback() string {
	if c.Fallback != "" {
		return c.Fallback
	}
	return FallbackCategory
}

// exemplars returns the semantic tier corpus for a category.
func (c *Category) exemplars() []string {
	if len(c.Exemplars) > 0 {
		return c.Exemplars
	}
	return c.Keywords
}

// DefaultConfig returns the built-in categories tuned for Canadian
// statements.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Fallback: FallbackCategory,
		Categories: []Category{
			{
				Name: "Groceries",
				Keywords: []string{
					"loblaws", "sobeys", "metro", "no frills", "nofrills",
					"food basics", "freshco", "farm boy", "t&t supermarket",
					"costco wholesale", "walmart supercentre", "grocery",
					"supermarket", "iga", "safeway", "save-on-foods",
				},
			},
			{
				Name: "Dining",
				Keywords: []string{
					"tim hortons", "starbucks", "mcdonald", "subway",
					"a&w", "harvey's", "swiss chalet", "boston pizza",
					"uber eats", "ubereats", "skip the dishes", "skipthedishes",
					"doordash", "restaurant", "cafe", "pizza", "sushi",
				},
			},
			{
				Name: "Transportation",
				Keywords: []string{
					"presto", "ttc", "go transit", "via rail", "uber",
					"lyft", "petro-canada", "petro canada", "esso", "shell",
					"husky", "canadian tire gas", "parking", "impark",
					"green p", "407 etr",
				},
			},
			{
				Name: "Entertainment",
				Keywords: []string{
					"netflix", "spotify", "disney plus", "crave",
					"apple.com/bill", "cineplex", "steam", "playstation",
					"nintendo", "audible", "kindle",
				},
			},
			{
				Name: "Shopping",
				Keywords: []string{
					"amazon", "amzn", "winners", "marshalls", "hudson's bay",
					"the bay", "canadian tire", "home depot", "rona", "ikea",
					"best buy", "sport chek", "indigo", "dollarama",
					"shoppers drug mart",
				},
			},
			{
				Name: "Health & Wellness",
				Keywords: []string{
					"pharmacy", "pharmaprix", "rexall", "dental", "physio",
					"goodlife", "fitness", "massage", "optometr", "clinic",
				},
			},
			{
				Name: "Utilities & Bills",
				Keywords: []string{
					"rogers", "bell canada", "telus", "fido", "koodo",
					"freedom mobile", "hydro", "enbridge", "toronto hydro",
					"utility", "insurance", "wealthsimple", "questrade",
				},
			},
			{
				Name: "Travel",
				Keywords: []string{
					"air canada", "westjet", "porter air", "flair air",
					"expedia", "booking.com", "airbnb", "hotel", "fairmont",
					"delta air", "marriott", "via-rail",
				},
			},
			{
				Name: "Income",
				Keywords: []string{
					"payroll", "pay deposit", "direct deposit",
					"e-transfer received", "interest paid", "interest earned",
					"gst/hst credit", "canada child benefit", "tax refund",
					"ei canada", "refund",
				},
			},
			{
				Name: "Fees & Charges",
				Keywords: []string{
					"monthly fee", "monthly plan fee", "service charge",
					"servicecharge", "overdraft", "nsf fee", "atm fee",
					"interest charge", "annual fee", "fees/dues",
					"wire fee",
				},
			},
		},
	}
}
