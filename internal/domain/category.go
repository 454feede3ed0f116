package domain

// Category is one of the ten closed labels the categorizer assigns.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryInvestment    Category = "Investment"
	CategoryTransfer      Category = "Transfer"
	CategoryOther         Category = "Other"
)

// CategoryDescription is the one-line purpose description supplied to the
// model alongside each category name (spec.md §4.6). Order matters: it is
// the order categories are listed in prompts.
var CategoryDescriptions = []struct {
	Name        Category
	Description string
}{
	{CategoryFood, "Restaurants, food delivery, groceries, cafes"},
	{CategoryTransport, "Cabs, fuel, public transit, tolls, parking"},
	{CategoryShopping, "Retail, e-commerce, clothing, electronics"},
	{CategoryBills, "Utilities, rent, subscriptions, insurance premiums"},
	{CategoryEntertainment, "Movies, streaming, games, events"},
	{CategoryHealth, "Pharmacy, hospitals, doctor visits, fitness"},
	{CategoryEducation, "Tuition, courses, books, school fees"},
	{CategoryInvestment, "SIPs, mutual funds, stocks, deposits"},
	{CategoryTransfer, "Peer transfers, loan repayments, account transfers"},
	{CategoryOther, "Anything that does not fit the above — the true non-fit bucket"},
}

// ValidCategory reports whether name is one of the closed ten labels.
func ValidCategory(name string) bool {
	for _, c := range CategoryDescriptions {
		if string(c.Name) == name {
			return true
		}
	}
	return false
}

// CategoryNames returns the closed category set as plain strings, in the
// canonical prompt order.
func CategoryNames() []string {
	names := make([]string, len(CategoryDescriptions))
	for i, c := range CategoryDescriptions {
		names[i] = string(c.Name)
	}
	return names
}
