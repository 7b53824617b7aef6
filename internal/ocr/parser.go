package ocr

import (
	"regexp"
	"strings"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Result holds the heuristic extraction from recognized receipt text. Every
// field is best-effort: absent fields stay at their zero value.
type Result struct {
	Text              string           `json:"text"`
	Amount            *decimal.Decimal `json:"amount"`
	Date              *domain.Date     `json:"date"`
	SuggestedCategory string           `json:"suggestedCategory,omitempty"`
}

var currencySymbols = []string{
	"$", "€", "£", "¥", "NT$", "HK$", "元", "RM", "₹", "₱", "₩", "฿", "₫", "₪", "₽", "₺",
}

var (
	currencyPattern *regexp.Regexp
	amountPattern   *regexp.Regexp
)

func init() {
	parts := make([]string, len(currencySymbols))
	for i, s := range currencySymbols {
		parts[i] = regexp.QuoteMeta(s)
	}
	symbols := "(?:" + strings.Join(parts, "|") + ")"
	currencyPattern = regexp.MustCompile(symbols)
	amountPattern = regexp.MustCompile(
		`(?:` + symbols + `\s*)?` +
			`(\d{1,3}(?:[,.]\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)` +
			`(?:\s*` + symbols + `)?`)
}

// Keywords that label the payable total on receipts and invoices
var englishAmountKeywords = []string{
	"total", "amount due", "balance due", "grand total", "subtotal",
	"total amount", "payment due", "invoice total", "receipt total",
}

var chineseAmountKeywords = []string{
	"總計", "合計", "總金額", "應付金額", "金額", "款項", "費用總計",
	"发票总额", "小計", "总额", "合计金额",
}

var (
	commaDecimalPattern          = regexp.MustCompile(`,\d\d$`)
	periodDecimalPattern         = regexp.MustCompile(`\.\d\d$`)
	periodThousandsCommaDecimals = regexp.MustCompile(`\.\d{3},\d\d$`)
)

// normalizeAmount rewrites a matched number into plain decimal notation,
// resolving European-style separators ("1.234,56") against US-style
// ("1,234.56") by inspecting the trailing two digits.
func normalizeAmount(s string) string {
	hasCommaDecimal := commaDecimalPattern.MatchString(s) && !periodDecimalPattern.MatchString(s)
	switch {
	case periodThousandsCommaDecimals.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasCommaDecimal && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasCommaDecimal:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

// ParseAmount scans receipt text for the most plausible total.
//
// Each line is scored: +10 for an English total keyword, +10 for a Chinese
// one, +2 for a currency symbol. Number candidates on the line inherit the
// line score, gain +5 for a decimal point on a scored or currency-bearing
// line, and lose 5 for long undecorated integers on unscored lines unless
// the line looks like a date. Ties go to the larger value, which picks the
// grand total over the tax line.
func ParseAmount(text string) (decimal.Decimal, bool) {
	var (
		best      decimal.Decimal
		bestScore int
		found     bool
	)

	for _, line := range strings.Split(text, "\n") {
		lineLower := strings.ToLower(line)
		lineScore := 0

		for _, keyword := range englishAmountKeywords {
			if strings.Contains(lineLower, keyword) {
				lineScore += 10
				break
			}
		}
		for _, keyword := range chineseAmountKeywords {
			if strings.Contains(lineLower, keyword) {
				lineScore += 10
				break
			}
		}

		hasCurrency := currencyPattern.MatchString(line)
		if hasCurrency {
			lineScore += 2
		}

		for _, match := range amountPattern.FindAllStringSubmatch(line, -1) {
			amountStr := normalizeAmount(match[1])
			num, err := decimal.NewFromString(amountStr)
			if err != nil || !num.IsPositive() {
				continue
			}

			score := lineScore
			if (lineScore > 0 || hasCurrency) && strings.Contains(amountStr, ".") {
				score += 5
			}
			if lineScore < 5 && (len(amountStr) > 7 || (len(amountStr) >= 4 && !strings.Contains(amountStr, "."))) {
				// Long plain integers on unscored lines are usually phone
				// numbers or IDs, unless the line is a date
				if !lineMatchesDatePattern(line) {
					score -= 5
				}
			}

			// A tiny value never displaces a much larger, better scored one
			if num.LessThan(decimal.NewFromInt(1)) && found &&
				best.GreaterThan(decimal.NewFromInt(10)) && score < bestScore-5 {
				continue
			}

			if !found || score > bestScore || (score == bestScore && num.GreaterThan(best)) {
				best = num
				bestScore = score
				found = true
			}
		}
	}
	return best, found
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?P<year>\d{4})[.\-/年](?P<month>\d{1,2})[.\-/月](?P<day>\d{1,2})日?`),
	regexp.MustCompile(`(?P<month>\d{1,2})[.\-/月](?P<day>\d{1,2})[.\-/年](?P<year>\d{2,4})日?`),
	regexp.MustCompile(`(?P<day>\d{1,2})[.\-/月](?P<month>\d{1,2})[.\-/年](?P<year>\d{2,4})日?`),
	regexp.MustCompile(`(?P<year>\d{4})年(?P<month>\d{1,2})月(?P<day>\d{1,2})`),
	regexp.MustCompile(`(?i)(?P<monthname>Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(?P<day>\d{1,2}),?\s+(?P<year>\d{4})`),
	regexp.MustCompile(`(?i)(?P<day>\d{1,2})\s+(?P<monthname>Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec),?\s+(?P<year>\d{4})`),
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func lineMatchesDatePattern(line string) bool {
	for _, p := range datePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// ParseDate extracts the first recognizable date from receipt text.
//
// Patterns are tried in a fixed priority order covering ISO, slashed US and
// European orderings, Chinese 年月日 forms, and spelled-out English months.
// An ambiguous numeric date goes to the first pattern that yields a valid
// calendar date, so MM/DD wins over DD/MM when both read validly.
func ParseDate(text string) (domain.Date, bool) {
	return parseDateAt(text, time.Now().Year())
}

func parseDateAt(text string, currentYear int) (domain.Date, bool) {
	for _, pattern := range datePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		var day, month, year int
		var hasDay, hasMonth, hasYear bool
		for i, name := range pattern.SubexpNames() {
			if i == 0 || match[i] == "" {
				continue
			}
			switch name {
			case "day":
				day, hasDay = atoi(match[i]), true
			case "month":
				month, hasMonth = atoi(match[i]), true
			case "year":
				year, hasYear = atoi(match[i]), true
			case "monthname":
				month, hasMonth = int(monthNames[strings.ToLower(match[i])[:3]]), true
			}
		}
		if !hasDay || !hasMonth || !hasYear {
			continue
		}

		// Two-digit years pivot around five years past the current year:
		// OCR of "98" on an old receipt reads as 1998, "27" as 2027
		if year < 100 {
			if year > currentYear%100+5 {
				year += 1900
			} else {
				year += 2000
			}
		}

		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		d := domain.NewDate(year, time.Month(month), day)
		readback := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if readback.Year() != year || readback.Month() != time.Month(month) || readback.Day() != day {
			// Feb 30 and friends normalize to a different date; reject
			continue
		}
		return d, true
	}
	return domain.Date{}, false
}

// categoryKeywords maps a category to the substrings that suggest it. The
// slice order is a priority ranking: specific billed services outrank broad
// spending buckets so a "gas utility" receipt lands on Utilities, not
// Transport.
var categoryKeywords = []struct {
	Name     string
	Keywords []string
}{
	{"Utilities", []string{
		"utility", "electric", "water", "gas", "power", "energy", "sanitation", "waste",
		"internet", "comcast", "xfinity", "verizon fios", "at&t u-verse", "pg&e",
		"con edison", "duke energy", "台電", "台灣電力", "自來水", "水費", "天然氣",
		"瓦斯", "中華電信", "網路費", "第四台", "電費", "能源賬單", "寬頻", "固網",
		"電力公司", "燃氣公司", "水務公司",
	}},
	{"Credit Card", []string{
		"visa", "mastercard", "master card", "amex", "american express", "discover",
		"credit card payment", "信用卡費", "信用卡帳單", "信用咭月結單", "卡費", "銀行月結單",
	}},
	{"Tax", []string{
		"tax", "irs", "internal revenue service", "revenue", "hmrc", "cra", "ato",
		"income tax", "property tax", "sales tax", "vat", "gst", "稅", "税单", "稅務",
		"所得稅", "營業稅", "地價稅", "房屋稅", "國稅局",
	}},
	{"Groceries", []string{
		"grocery", "market", "supermarket", "whole foods", "trader joe", "safeway",
		"kroger", "walmart neighborhood market", "target market", "aldi", "lidl",
		"publix", "wegmans", "stop & shop", "giant", "food lion", "heb", "meijer",
		"sprouts", "fresh market", "全聯", "px mart", "頂好", "wellcome", "citysuper",
		"jasons", "carrefour", "rt-mart", "costco", "愛買", "松青", "惠康", "超市",
		"菜市場", "食品杂货", "生鮮食品", "日常用品",
	}},
	{"Food", []string{
		"restaurant", "cafe", "food", "meal", "takeout", "delivery", "mcdonalds",
		"mcdonald's", "starbucks", "subway", "pizza hut", "dominos", "kfc",
		"burger king", "coffee", "lunch", "dinner", "breakfast", "brunch", "外賣",
		"餐廳", "咖啡廳", "膳食", "小吃", "速食", "便當", "飲料店", "手搖飲",
		"foodpanda", "ubereats", "grabfood",
	}},
	{"Transport", []string{
		"transport", "uber", "lyft", "taxi", "bus", "train", "subway", "mrt",
		"gasoline", "petrol", "fuel", "parking", "toll", "flight", "airline", "交通",
		"公車", "火車", "地鐵", "捷運", "油費", "停車費", "過路費", "計程車", "高鐵",
		"台鐵", "機票", "油站", "加油",
	}},
	{"Housing", []string{
		"rent", "mortgage", "housing", "strata", "hoa", "lease payment", "租金",
		"房貸", "住房費用", "管理費", "物業費",
	}},
	{"Health", []string{
		"health", "pharmacy", "doctor", "dentist", "hospital", "clinic", "cvs",
		"walgreens", "rite aid", "medical", "vision", "insurance premium", "健康",
		"藥房", "診所", "醫院", "保健品", "醫藥費", "牙醫", "看醫生", "健保費",
	}},
	{"Shopping", []string{
		"amazon", "target", "walmart", "best buy", "ebay", "clothing", "electronics",
		"books", "department store", "online shopping", "購物", "百貨公司", "網購",
		"服飾", "電器產品", "書店", "商場",
	}},
	{"Entertainment", []string{
		"movie", "cinema", "concert", "netflix", "spotify", "hulu", "disney+",
		"youtube premium", "games", "steam", "playstation", "xbox", "nintendo",
		"tickets", "event", "娛樂", "電影院", "音樂會", "遊戲", "串流服務", "門票", "ktv",
	}},
	{"Education", []string{
		"education", "school", "college", "university", "tuition", "books", "course",
		"udemy", "coursera", "student loan", "教育", "學費", "書本費", "課程費用",
		"補習班", "學貸",
	}},
	{"Travel", []string{
		"travel", "airline ticket", "hotel", "accommodation", "airbnb", "expedia",
		"booking.com", "vacation", "trip", "tourism", "旅遊", "機票", "住宿費用",
		"旅行社", "度假",
	}},
	{"Other", []string{
		"other", "miscellaneous", "fee", "service charge", "donation", "其他", "雜項",
		"手續費", "服務費", "捐款",
	}},
}

// SuggestCategory returns the highest-priority category whose keywords
// appear in the text, or "" when nothing matches.
func SuggestCategory(text string) string {
	lowerText := strings.ToLower(text)
	for _, category := range categoryKeywords {
		for _, keyword := range category.Keywords {
			if strings.Contains(lowerText, keyword) {
				return category.Name
			}
		}
	}
	return ""
}

// ParseText runs every extractor over recognized text and collects the
// results
func ParseText(text string) Result {
	result := Result{Text: text}
	if amount, ok := ParseAmount(text); ok {
		result.Amount = &amount
	}
	if date, ok := ParseDate(text); ok {
		result.Date = &date
	}
	result.SuggestedCategory = SuggestCategory(text)
	return result
}
