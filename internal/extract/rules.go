package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/numeral"
)

// Field names one column of the record.
type Field string

const (
	FieldStartPeriod Field = "start_period"
	FieldEmail       Field = "email"
	FieldUnitCount   Field = "unit_count"
	FieldUnitPrice   Field = "unit_price"
	FieldTotal       Field = "total"
	FieldCommission  Field = "commission_amount"
)

// Rule is one pattern for a field. A field's rules are tried in table order
// and the first match that normalizes wins. Exactly one of Text or Number is set.
type Rule struct {
	Field   Field
	Name    string
	Pattern *regexp.Regexp
	Text    func(m []string) (string, bool)
	Number  func(m []string) (int64, bool)
	// Numeral marks rules whose first group is a Chinese numeral run.
	Numeral bool
}

// Result is the outcome of matching one field.
type Result struct {
	Field Field
	Rule  string // name of the rule that matched, "" when none
	Raw   string // first capture group (or full match) of the winning match
	Text  string
	Value entity.Value
}

func (r Result) Found() bool { return r.Rule != "" }

// RuleSet is an ordered rule table.
type RuleSet []Rule

// Match runs every rule for field against text.
func (rs RuleSet) Match(field Field, text string) Result {
	res := Result{Field: field, Text: constants.Unrecognized}
	for _, rule := range rs {
		if rule.Field != field {
			continue
		}
		for _, m := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			switch {
			case rule.Number != nil:
				n, ok := rule.Number(m)
				if !ok {
					continue
				}
				res.Rule, res.Raw, res.Value, res.Text = rule.Name, raw, entity.Known(n), strconv.FormatInt(n, 10)
				return res
			case rule.Text != nil:
				s, ok := rule.Text(m)
				if !ok {
					continue
				}
				res.Rule, res.Raw, res.Text = rule.Name, raw, s
				return res
			}
		}
	}
	return res
}

const (
	numeralRun = `([` + numeral.Characters + `]+)`
	digitRun   = `(\d[\d,]*)`
	currency   = `(?:NTD?|新台幣|新臺幣)?\s*[$＄]?\s*`
	// sep is the label separator; OCR emits either colon width.
	sep = `[\s:：]*`
)

// DefaultRules is the rule table for commission supplement contracts.
// Separators and currency marks match in both widths so raw OCR text works too.
func DefaultRules() RuleSet {
	return RuleSet{
		{
			Field:   FieldStartPeriod,
			Name:    "roc-year-month",
			Pattern: regexp.MustCompile(`(?:^|[^\d])(\d{3})\s*年\s*(\d{1,2})\s*月`),
			Text:    yearMonth,
		},
		{
			Field:   FieldEmail,
			Name:    "email-strict",
			Pattern: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}`),
			Text:    func(m []string) (string, bool) { return m[0], true },
		},
		{
			Field: FieldEmail,
			Name:  "email-loose",
			Pattern: regexp.MustCompile(`(?i)([A-Za-z0-9_%+-]+(?:\s*\.\s*[A-Za-z0-9_%+-]+)*)\s*` +
				`(?:@|\(\s*(?:@|at)\s*\)|\[\s*(?:@|at)\s*\])\s*` +
				`([A-Za-z0-9-]+(?:\s*\.\s*[A-Za-z0-9-]+)*\s*\.\s*[A-Za-z]{2,})`),
			Text: looseEmail,
		},
		{
			Field:   FieldUnitCount,
			Name:    "count-numeral-tai",
			Pattern: regexp.MustCompile(`聯網機[^\n\d]{0,12}?` + numeralRun + `\s*台`),
			Number:  chineseNumber,
			Numeral: true,
		},
		{
			Field:   FieldUnitCount,
			Name:    "count-numeral",
			Pattern: regexp.MustCompile(`聯網機[^\n\d]{0,12}?[數量台]*[:：]?\s*` + numeralRun),
			Number:  chineseNumber,
			Numeral: true,
		},
		{
			Field:   FieldUnitCount,
			Name:    "count-digits-tai",
			Pattern: regexp.MustCompile(`聯網機[^\n\d]{0,12}?` + digitRun + `\s*台`),
			Number:  arabicNumber,
		},
		{
			Field:   FieldUnitPrice,
			Name:    "price-keyword",
			Pattern: regexp.MustCompile(`單價` + sep + currency + digitRun),
			Number:  arabicNumber,
		},
		{
			Field:   FieldTotal,
			Name:    "total-keyword",
			Pattern: regexp.MustCompile(`[合總总][計计]` + sep + currency + digitRun),
			Number:  arabicNumber,
		},
		{
			Field:   FieldCommission,
			Name:    "commission-numeral",
			Pattern: regexp.MustCompile(`分[潤润]乙方[\s\S]*?幣` + sep + numeralRun + `\s*元`),
			Number:  chineseNumber,
			Numeral: true,
		},
		{
			Field:   FieldCommission,
			Name:    "commission-digits",
			Pattern: regexp.MustCompile(`分[潤润]乙方[\s\S]*?幣` + sep + `[$＄]?\s*` + digitRun + `\s*元`),
			Number:  arabicNumber,
		},
	}
}

func yearMonth(m []string) (string, bool) {
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%s年%d月", m[1], month), true
}

var (
	reLooseJunk = regexp.MustCompile(`[\s()\[\]]+`)
	reTLD       = regexp.MustCompile(`\.[A-Za-z]{2,}$`)
)

func looseEmail(m []string) (string, bool) {
	local := reLooseJunk.ReplaceAllString(m[1], "")
	domain := reLooseJunk.ReplaceAllString(m[2], "")
	// version strings like "1.2 @ 3.4" have no alphabetic top-level label
	if local == "" || !reTLD.MatchString(domain) {
		return "", false
	}
	return constants.SuspectedPrefix + local + "@" + domain, true
}

func chineseNumber(m []string) (int64, bool) {
	if strings.TrimSpace(m[1]) == "" {
		return 0, false
	}
	return numeral.ToInt(m[1]), true
}

func arabicNumber(m []string) (int64, bool) {
	digits := strings.ReplaceAll(m[1], ",", "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
