// Package profile holds the statement profile registry: the detection
// signatures and parsing hints for every supported institution and
// statement type. Profiles are immutable once the registry is built;
// adding an institution means registering a new profile and its parsing
// strategy, never editing an existing one.
package profile

// SignConvention declares how a statement's printed amounts relate to the
// canonical schema, where negative always means a debit.
type SignConvention int

const (
	// SignDirect keeps the printed sign: deposits positive, withdrawals
	// negative. Bank account statements use this.
	SignDirect SignConvention = iota
	// SignCreditCard inverts: credit cards print purchases as positive
	// amounts and payments as credits.
	SignCreditCard
)

func (s SignConvention) String() string {
	if s == SignCreditCard {
		return "credit-card"
	}
	return "direct"
}

// Signature is one text pattern expected near the top of a statement,
// with a weight reflecting how specific it is.
type Signature struct {
	Pattern string
	Weight  int
}

// Profile identifies an institution + statement type and carries its
// parsing hints.
type Profile struct {
	ID    string
	Label string

	// Signatures score the profile during detection. Exclude patterns
	// veto it outright, separating e.g. a BMO chequing statement from a
	// BMO credit card one.
	Signatures []Signature
	Exclude    []string

	// DateLayouts are Go reference layouts tried in order. Layouts
	// without a year receive the statement year during normalization.
	DateLayouts []string

	Sign     SignConvention
	Currency string
}

// GenericID is the profile id of the format-agnostic fallback used
// when no registered profile claims a statement.
const GenericID = "generic"

// Generic returns the fallback profile. Its date layouts cover the
// common shapes a leading date token takes across issuers.
func Generic() *Profile {
	return &Profile{
		ID:    GenericID,
		Label: "Generic statement",
		DateLayouts: []string{
			"01/02/2006", "01/02/06", "01/02", "2006-01-02",
			"2-Jan-2006", "2 Jan 2006", "Jan 2, 2006", "January 2, 2006",
			"2 Jan", "Jan 2", "Jan-2", "Jan2", "January 2", "January2",
		},
		Sign:     SignDirect,
		Currency: "CAD",
	}
}

// Registry is an ordered, immutable set of profiles. Registration order
// matters only for detection tie-breaks, where the most recently added
// profile wins.
type Registry struct {
	profiles []*Profile
	byID     map[string]*Profile
}

// NewRegistry builds a registry from the given profiles.
func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{
		profiles: profiles,
		byID:     make(map[string]*Profile, len(profiles)),
	}
	for _, p := range profiles {
		r.byID[p.ID] = p
	}
	return r
}

// Get returns the profile with the given id, or nil.
func (r *Registry) Get(id string) *Profile {
	return r.byID[id]
}

// All returns the registered profiles in registration order.
func (r *Registry) All() []*Profile {
	return r.profiles
}

// Default returns the registry of supported Canadian institutions.
// Broader profiles are registered before more specific ones sharing
// their signatures, so the specific profile wins detection ties.
func Default() *Registry {
	return NewRegistry(
		&Profile{
			ID:    "cibc-chequing",
			Label: "CIBC Account",
			Signatures: []Signature{
				{"CIBC Account Statement", 3},
				{"Branch transit number", 2},
				{"Transaction details", 1},
				{"CIBC", 1},
			},
			Exclude:     []string{"Simplii Financial", "Aventura"},
			DateLayouts: []string{"Jan 2", "Jan2"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "td-chequing",
			Label: "TD Personal Account",
			Signatures: []Signature{
				{"STATEMENT OF ACCOUNT", 2},
				{"TD Personal", 2},
				{"Primary Account", 1},
			},
			Exclude:     []string{"CASH BACK CARD"},
			DateLayouts: []string{"01/02"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "rbc-chequing",
			Label: "RBC Day to Day Banking",
			Signatures: []Signature{
				{"Royal Bank of Canada", 3},
				{"RBC Day to Day Banking", 3},
				{"Details of your account activity", 2},
			},
			Exclude:     []string{"Visa Infinite", "Avion"},
			DateLayouts: []string{"2 Jan", "02 Jan"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "scotiabank-chequing",
			Label: "Scotiabank Account",
			Signatures: []Signature{
				{"Scotiabank", 1},
				{"Balance brought forward", 2},
				{"Withdrawals", 1},
				{"Deposits", 1},
			},
			Exclude:     []string{"Scene", "Credit limit", "Minimum payment"},
			DateLayouts: []string{"Jan2", "Jan 2"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "tangerine-savings",
			Label: "Tangerine Savings",
			Signatures: []Signature{
				{"www.tangerine.ca", 2},
				{"Orange Key", 2},
				{"Tangerine Savings", 2},
			},
			Exclude:     []string{"Money-Back Credit Card"},
			DateLayouts: []string{"02 Jan 2006", "2 Jan 2006"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "eq-bank",
			Label: "EQ Bank",
			Signatures: []Signature{
				{"EQ Bank", 3},
				{"Equitable Bank", 3},
				{"Cash Card", 1},
			},
			DateLayouts: []string{"Jan 2"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "bmo-chequing",
			Label: "BMO Everyday Banking",
			Signatures: []Signature{
				{"Your Everyday Banking statement", 3},
				{"Everyday Banking", 2},
				{"Primary Chequing Account", 2},
				{"BMO Bank of Montreal", 1},
			},
			Exclude:     []string{"MasterCard"},
			DateLayouts: []string{"Jan2", "Jan 2"},
			Sign:        SignDirect,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "bmo-credit",
			Label: "BMO MasterCard",
			Signatures: []Signature{
				{"BMO", 1},
				{"MasterCard", 2},
				{"Card Number", 1},
			},
			Exclude:     []string{"Everyday Banking"},
			DateLayouts: []string{"Jan. 2", "Jan.2", "Jan 2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "td-credit",
			Label: "TD Cash Back Card",
			Signatures: []Signature{
				{"TD CASH BACK CARD", 3},
				{"CASH BACK CARD", 2},
			},
			DateLayouts: []string{"Jan 2", "Jan2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "rbc-visa",
			Label: "RBC Visa",
			Signatures: []Signature{
				{"RBC Visa", 3},
				{"Visa Infinite", 2},
				{"Avion", 2},
			},
			DateLayouts: []string{"Jan2", "Jan 2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "simplii",
			Label: "Simplii Cash Back Visa",
			Signatures: []Signature{
				{"Simplii Financial", 3},
				{"Cash Back Visa", 2},
				{"simplii.com", 2},
			},
			DateLayouts: []string{"Jan 2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "cibc-visa-usd",
			Label: "CIBC U.S. Dollar Aventura Visa",
			Signatures: []Signature{
				{"U.S. Dollar Aventura", 3},
				{"Aventura Gold Visa Card", 3},
				{"CIBC Visa", 2},
			},
			Exclude:     []string{"Opening Balance", "Account Balance Summary"},
			DateLayouts: []string{"Jan 2"},
			Sign:        SignCreditCard,
			Currency:    "USD",
		},
		&Profile{
			ID:    "amex-credit",
			Label: "Amex",
			Signatures: []Signature{
				{"AmericanExpress", 2},
				{"Amex Bank of Canada", 3},
			},
			DateLayouts: []string{"January2", "January 2", "Jan2", "Jan 2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "scotiabank-credit",
			Label: "Scotiabank Scene Visa",
			Signatures: []Signature{
				{"Scotiabank", 1},
				{"Scene", 2},
				{"Credit limit", 1},
				{"Minimum payment", 1},
			},
			Exclude:     []string{"Balance brought forward"},
			DateLayouts: []string{"Jan-2"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "tangerine-credit",
			Label: "Tangerine Money-Back Credit Card",
			Signatures: []Signature{
				{"Money-Back Credit Card", 3},
				{"Money-Back Rewards", 2},
				{"Tangerine", 1},
			},
			Exclude:     []string{"Orange Key"},
			DateLayouts: []string{"2-Jan-2006", "02-Jan-2006"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
		&Profile{
			ID:    "wise",
			Label: "Wise",
			Signatures: []Signature{
				{"wise.com", 3},
				{"Wise", 1},
				{"xxxx-xxxx-xxxx", 2},
			},
			DateLayouts: []string{"Jan 2, 2006"},
			Sign:        SignCreditCard,
			Currency:    "CAD",
		},
	)
}
