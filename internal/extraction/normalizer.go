package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default category names recognized by the normalizer. These line up with the
// seeded categories so rule-parsed rows can be matched by name.
const (
	CategoryFood          = "Food"
	CategoryHousing       = "Housing"
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryHealthcare    = "Healthcare"
	CategoryUtilities     = "Utilities"
	CategoryShopping      = "Shopping"
	CategoryEducation     = "Education"
	CategoryTravel        = "Travel"
	CategoryOther         = "Other"
)

// MerchantInfo is a normalized merchant name with a suggested category.
type MerchantInfo struct {
	Name       string
	Category   string
	Confidence float64
}

// merchantMappings maps known merchant keywords to normalized names and categories.
var merchantMappings = map[string]MerchantInfo{
	// Grocery stores
	"woolworths":  {Name: "Woolworths", Category: CategoryFood, Confidence: 0.95},
	"coles":       {Name: "Coles", Category: CategoryFood, Confidence: 0.95},
	"aldi":        {Name: "Aldi", Category: CategoryFood, Confidence: 0.95},
	"costco":      {Name: "Costco", Category: CategoryFood, Confidence: 0.95},
	"iga":         {Name: "IGA", Category: CategoryFood, Confidence: 0.95},
	"whole foods": {Name: "Whole Foods", Category: CategoryFood, Confidence: 0.95},
	"trader joe":  {Name: "Trader Joe's", Category: CategoryFood, Confidence: 0.95},

	// Fast food & restaurants
	"mcdonalds":  {Name: "McDonald's", Category: CategoryFood, Confidence: 0.95},
	"mcdonald's": {Name: "McDonald's", Category: CategoryFood, Confidence: 0.95},
	"starbucks":  {Name: "Starbucks", Category: CategoryFood, Confidence: 0.95},
	"subway":     {Name: "Subway", Category: CategoryFood, Confidence: 0.95},
	"kfc":        {Name: "KFC", Category: CategoryFood, Confidence: 0.95},
	"dominos":    {Name: "Domino's", Category: CategoryFood, Confidence: 0.95},
	"pizza hut":  {Name: "Pizza Hut", Category: CategoryFood, Confidence: 0.95},

	// Food delivery
	"uber eats": {Name: "Uber Eats", Category: CategoryFood, Confidence: 0.95},
	"doordash":  {Name: "DoorDash", Category: CategoryFood, Confidence: 0.95},
	"deliveroo": {Name: "Deliveroo", Category: CategoryFood, Confidence: 0.95},
	"menulog":   {Name: "Menulog", Category: CategoryFood, Confidence: 0.95},

	// Transportation
	"uber":    {Name: "Uber", Category: CategoryTransport, Confidence: 0.95},
	"lyft":    {Name: "Lyft", Category: CategoryTransport, Confidence: 0.95},
	"shell":   {Name: "Shell", Category: CategoryTransport, Confidence: 0.95},
	"bp":      {Name: "BP", Category: CategoryTransport, Confidence: 0.95},
	"caltex":  {Name: "Caltex", Category: CategoryTransport, Confidence: 0.95},
	"ampol":   {Name: "Ampol", Category: CategoryTransport, Confidence: 0.95},
	"chevron": {Name: "Chevron", Category: CategoryTransport, Confidence: 0.95},
	"opal":    {Name: "Opal Card", Category: CategoryTransport, Confidence: 0.95},
	"myki":    {Name: "Myki", Category: CategoryTransport, Confidence: 0.95},

	// Entertainment
	"netflix":         {Name: "Netflix", Category: CategoryEntertainment, Confidence: 0.95},
	"spotify":         {Name: "Spotify", Category: CategoryEntertainment, Confidence: 0.95},
	"disney+":         {Name: "Disney+", Category: CategoryEntertainment, Confidence: 0.95},
	"amazon prime":    {Name: "Amazon Prime", Category: CategoryEntertainment, Confidence: 0.95},
	"youtube premium": {Name: "YouTube Premium", Category: CategoryEntertainment, Confidence: 0.95},

	// Shopping
	"amazon":   {Name: "Amazon", Category: CategoryShopping, Confidence: 0.95},
	"ebay":     {Name: "eBay", Category: CategoryShopping, Confidence: 0.95},
	"target":   {Name: "Target", Category: CategoryShopping, Confidence: 0.95},
	"ikea":     {Name: "IKEA", Category: CategoryShopping, Confidence: 0.95},
	"bunnings": {Name: "Bunnings", Category: CategoryShopping, Confidence: 0.95},
	"jb hi-fi": {Name: "JB Hi-Fi", Category: CategoryShopping, Confidence: 0.95},

	// Healthcare
	"chemist warehouse": {Name: "Chemist Warehouse", Category: CategoryHealthcare, Confidence: 0.95},
	"priceline":         {Name: "Priceline Pharmacy", Category: CategoryHealthcare, Confidence: 0.95},

	// Utilities
	"telstra":  {Name: "Telstra", Category: CategoryUtilities, Confidence: 0.95},
	"optus":    {Name: "Optus", Category: CategoryUtilities, Confidence: 0.95},
	"vodafone": {Name: "Vodafone", Category: CategoryUtilities, Confidence: 0.95},

	// Travel
	"airbnb":      {Name: "Airbnb", Category: CategoryTravel, Confidence: 0.95},
	"booking.com": {Name: "Booking.com", Category: CategoryTravel, Confidence: 0.95},
	"qantas":      {Name: "Qantas", Category: CategoryTravel, Confidence: 0.95},
	"hilton":      {Name: "Hilton", Category: CategoryTravel, Confidence: 0.95},
}

// categoryKeywords maps generic keywords to categories for fallback.
var categoryKeywords = map[string]string{
	"restaurant": CategoryFood,
	"cafe":       CategoryFood,
	"coffee":     CategoryFood,
	"grocer":     CategoryFood,
	"bakery":     CategoryFood,
	"pizza":      CategoryFood,
	"sushi":      CategoryFood,

	"fuel":    CategoryTransport,
	"petrol":  CategoryTransport,
	"parking": CategoryTransport,
	"toll":    CategoryTransport,
	"taxi":    CategoryTransport,
	"train":   CategoryTransport,
	"bus":     CategoryTransport,

	"cinema":  CategoryEntertainment,
	"movie":   CategoryEntertainment,
	"theatre": CategoryEntertainment,
	"concert": CategoryEntertainment,

	"store":    CategoryShopping,
	"shop":     CategoryShopping,
	"clothing": CategoryShopping,

	"pharmacy": CategoryHealthcare,
	"chemist":  CategoryHealthcare,
	"doctor":   CategoryHealthcare,
	"medical":  CategoryHealthcare,
	"dental":   CategoryHealthcare,
	"hospital": CategoryHealthcare,

	"electric":  CategoryUtilities,
	"internet":  CategoryUtilities,
	"phone":     CategoryUtilities,
	"broadband": CategoryUtilities,

	"hotel":   CategoryTravel,
	"flight":  CategoryTravel,
	"airline": CategoryTravel,
	"airport": CategoryTravel,

	"rent":     CategoryHousing,
	"mortgage": CategoryHousing,
	"lease":    CategoryHousing,

	"school":     CategoryEducation,
	"university": CategoryEducation,
	"tuition":    CategoryEducation,
	"course":     CategoryEducation,
}

var (
	prefixPattern = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |paypal \*)`)
	suffixPattern = regexp.MustCompile(`(?i)\s+(pty|ltd|inc|corp|llc|au|us|uk|nz|sg)\.?$`)
	longNumbers   = regexp.MustCompile(`\d{6,}`)
	specialChars  = regexp.MustCompile(`[*#]+`)
)

// NormalizeMerchant normalizes a raw merchant/description string and suggests
// a category name.
func NormalizeMerchant(rawMerchant string) MerchantInfo {
	lower := strings.ToLower(strings.TrimSpace(rawMerchant))

	cleaned := prefixPattern.ReplaceAllString(lower, "")
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	cleaned = longNumbers.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	for key, info := range merchantMappings {
		if strings.Contains(cleaned, key) || strings.Contains(key, cleaned) {
			return info
		}
	}

	// Partial word matches get lower confidence.
	for key, info := range merchantMappings {
		for _, word := range strings.Fields(key) {
			if len(word) > 3 && strings.Contains(cleaned, word) {
				return MerchantInfo{
					Name:       info.Name,
					Category:   info.Category,
					Confidence: 0.8,
				}
			}
		}
	}

	for keyword, category := range categoryKeywords {
		if strings.Contains(cleaned, keyword) {
			return MerchantInfo{
				Name:       FormatMerchantName(rawMerchant),
				Category:   category,
				Confidence: 0.6,
			}
		}
	}

	return MerchantInfo{
		Name:       FormatMerchantName(rawMerchant),
		Category:   CategoryOther,
		Confidence: 0.3,
	}
}

// FormatMerchantName cleans a raw merchant name for display.
func FormatMerchantName(raw string) string {
	cleaned := prefixPattern.ReplaceAllString(raw, "")
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	cleaned = longNumbers.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	caser := cases.Title(language.English)
	words := strings.Fields(cleaned)
	for i, word := range words {
		if len(word) > 2 {
			words[i] = caser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := strings.Join(words, " ")
	if len(result) > 50 {
		result = result[:50]
	}

	return result
}
