package directory

// DefaultChart returns the starter chart of accounts a new ledger is
// seeded with.
func DefaultChart() []Params {
	return []Params{
		{Code: "1000", Name: "Cash", Classification: "asset", Description: "Cash on hand and in banks", Active: true},
		{Code: "1100", Name: "Accounts Receivable", Classification: "asset", Description: "Amounts owed by customers", Active: true},
		{Code: "1150", Name: "Allowance for Doubtful Accounts", Classification: "contra_asset", Description: "Estimated uncollectible receivables", Active: true},
		{Code: "1500", Name: "Equipment", Classification: "asset", Description: "Machinery and equipment", Active: true},
		{Code: "1510", Name: "Accumulated Depreciation", Classification: "contra_asset", Description: "Depreciation taken on equipment", Active: true},
		{Code: "2000", Name: "Accounts Payable", Classification: "liability", Description: "Amounts owed to vendors", Active: true},
		{Code: "3000", Name: "Owner's Capital", Classification: "equity", Description: "Owner contributions", Active: true},
		{Code: "3100", Name: "Owner's Draws", Classification: "contra_equity", Description: "Owner withdrawals", Active: true},
		{Code: "4000", Name: "Sales Revenue", Classification: "revenue", Description: "Revenue from sales", Active: true},
		{Code: "4100", Name: "Sales Returns", Classification: "contra_revenue", Description: "Returns and allowances", Active: true},
		{Code: "5000", Name: "Cost of Goods Sold", Classification: "expense", Description: "Direct cost of goods sold", Active: true},
		{Code: "5100", Name: "Rent Expense", Classification: "expense", Description: "Office rent", Active: true},
		{Code: "6000", Name: "Gain on Asset Sale", Classification: "gain", Active: true},
		{Code: "6100", Name: "Loss on Asset Sale", Classification: "loss", Active: true},
	}
}
