package model

// NormalBalance is the side on which an account classification naturally
// increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

// StatementCategory places a classification on a financial statement.
type StatementCategory string

const (
	CategoryPosition    StatementCategory = "position"    // balance sheet
	CategoryPerformance StatementCategory = "performance" // income statement
)

// Classification describes one of the fixed account classifications.
type Classification struct {
	Name              string
	NormalBalance     NormalBalance
	StatementCategory StatementCategory
	Contra            bool
}

// classifications is the static classification table. Contra variants
// invert the normal balance of their counterpart.
var classifications = map[string]Classification{
	"asset":            {Name: "asset", NormalBalance: NormalDebit, StatementCategory: CategoryPosition},
	"liability":        {Name: "liability", NormalBalance: NormalCredit, StatementCategory: CategoryPosition},
	"equity":           {Name: "equity", NormalBalance: NormalCredit, StatementCategory: CategoryPosition},
	"revenue":          {Name: "revenue", NormalBalance: NormalCredit, StatementCategory: CategoryPerformance},
	"expense":          {Name: "expense", NormalBalance: NormalDebit, StatementCategory: CategoryPerformance},
	"gain":             {Name: "gain", NormalBalance: NormalCredit, StatementCategory: CategoryPerformance},
	"loss":             {Name: "loss", NormalBalance: NormalDebit, StatementCategory: CategoryPerformance},
	"contra_asset":     {Name: "contra_asset", NormalBalance: NormalCredit, StatementCategory: CategoryPosition, Contra: true},
	"contra_liability": {Name: "contra_liability", NormalBalance: NormalDebit, StatementCategory: CategoryPosition, Contra: true},
	"contra_equity":    {Name: "contra_equity", NormalBalance: NormalDebit, StatementCategory: CategoryPosition, Contra: true},
	"contra_revenue":   {Name: "contra_revenue", NormalBalance: NormalDebit, StatementCategory: CategoryPerformance, Contra: true},
	"contra_expense":   {Name: "contra_expense", NormalBalance: NormalCredit, StatementCategory: CategoryPerformance, Contra: true},
	"contra_loss":      {Name: "contra_loss", NormalBalance: NormalCredit, StatementCategory: CategoryPerformance, Contra: true},
	"contra_gain":      {Name: "contra_gain", NormalBalance: NormalDebit, StatementCategory: CategoryPerformance, Contra: true},
}

// Classify resolves a classification tag against the static table.
func Classify(tag string) (Classification, error) {
	c, ok := classifications[tag]
	if !ok {
		return Classification{}, ErrInvalidClassification
	}
	return c, nil
}

// ClassificationTags returns all valid classification tags.
func ClassificationTags() []string {
	tags := make([]string, 0, len(classifications))
	for tag := range classifications {
		tags = append(tags, tag)
	}
	return tags
}

// Account is one row in the chart of accounts. Code is the primary key;
// Name is a secondary key, unique case-insensitively.
type Account struct {
	Code           string
	Name           string
	Classification string
	Description    string
	Active         bool
	AuditLogs      []AuditLog
}

// Clone returns a deep copy. Registry owners hand out clones so readers
// never alias the canonical table.
func (a Account) Clone() Account {
	c := a
	c.AuditLogs = append([]AuditLog(nil), a.AuditLogs...)
	return c
}
